package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

type csvLoader struct {
	comma rune
	exts  []string
}

func (l csvLoader) CanLoad(filename string) bool { return hasExt(filename, l.exts...) }

// Load reads delimited text. Cells stay strings; numeric coercion is left to
// the profiler.
func (l csvLoader) Load(r io.Reader) (Dataset, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.Comma = l.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	header, rest, _, ok := splitHeader(records)
	if !ok {
		return Dataset{}, nil
	}
	return fromRecords(header, rest, func(_, _ int, raw string) Value { return String(raw) }), nil
}
