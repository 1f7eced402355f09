package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Loader decodes one tabular file format into rows.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader) (Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// Supported reports whether some registered loader accepts filename.
func Supported(filename string) bool {
	return lookup(filename) != nil
}

// Load selects a loader by filename and decodes r.
func Load(filename string, r io.Reader) (Dataset, error) {
	l := lookup(filename)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
	}
	ds, err := l.Load(r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(filename), err)
	}
	return ds, nil
}

// LoadFile opens path and decodes it with the matching loader.
func LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(path, f)
}

func lookup(filename string) Loader {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return l
		}
	}
	return nil
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvLoader{comma: ',', exts: []string{".csv"}})
	Register(csvLoader{comma: '\t', exts: []string{".tsv", ".tab"}})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}

// headerNames turns a raw header row into unique column names. Header text
// is kept as written; empty headers become __EMPTY, __EMPTY_1, ...; repeats
// get _1, _2 suffixes.
func headerNames(raw []string) []string {
	used := make(map[string]bool, len(raw))
	next := make(map[string]int)
	out := make([]string, len(raw))
	for i, h := range raw {
		base := h
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		if used[name] {
			n := next[base]
			if n == 0 {
				n = 1
			}
			for used[base+"_"+strconv.Itoa(n)] {
				n++
			}
			name = base + "_" + strconv.Itoa(n)
			next[base] = n + 1
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// fromRecords builds rows from a header and records. Empty cells are left out
// of the row so they read as Absent; whitespace-only cells are kept. Rows with
// no cells at all are skipped.
func fromRecords(header []string, records [][]string, cell func(row, col int, raw string) Value) Dataset {
	names := headerNames(header)
	ds := make(Dataset, 0, len(records))
	for i, rec := range records {
		var row Row
		for j, raw := range rec {
			if j >= len(names) || raw == "" {
				continue
			}
			row.Set(names[j], cell(i, j, raw))
		}
		if row.Len() == 0 {
			continue
		}
		ds = append(ds, row)
	}
	return ds
}

// splitHeader drops leading empty rows and returns the header, the records
// after it, and the header's index in records.
func splitHeader(records [][]string) ([]string, [][]string, int, bool) {
	for i, rec := range records {
		if blank(rec) {
			continue
		}
		return rec, records[i+1:], i, true
	}
	return nil, nil, 0, false
}

func blank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
