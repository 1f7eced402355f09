package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filesense/internal/server"
)

var (
	serveAddr     string
	serveProvider string
	serveModel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis API",
	Example: `  filesense serve
  filesense serve --addr 127.0.0.1:9000 --provider ollama`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		svc, provider, err := newService(cfg, serviceOptions{
			runtimeOptions: runtimeOptions{ProviderFlag: serveProvider},
			Model:          serveModel,
		}, log)
		if err != nil {
			return err
		}
		addr := serveAddr
		maxBody := int64(server.DefaultMaxBody)
		if cfg != nil {
			if addr == "" {
				addr = cfg.ServerAddr
			}
			if cfg.MaxBodyMB > 0 {
				maxBody = int64(cfg.MaxBodyMB) << 20
			}
		}
		if addr == "" {
			addr = ":8080"
		}
		log.Info("analysis runtime", "provider", provider, "model", svc.Model, "strict", svc.Strict)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(svc, server.WithLogger(log), server.WithMaxBody(maxBody)).Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "model provider: openrouter|ollama (default from config)")
	serveCmd.Flags().StringVarP(&serveModel, "model", "m", "", "model id (default from config or provider)")
}
