package main

import "github.com/KaramelBytes/filesense/cmd"

func main() {
	cmd.Execute()
}
