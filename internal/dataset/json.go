package dataset

import (
	"fmt"
	"io"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool { return hasExt(filename, ".json") }

// Load reads a JSON array of row objects.
func (jsonLoader) Load(r io.Reader) (Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return DecodeRows(b)
}
