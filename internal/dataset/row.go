package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotArray is returned when a dataset payload is not a JSON array.
var ErrNotArray = errors.New("dataset is not an array")

// Cell is one named value inside a Row.
type Cell struct {
	Name  string
	Value Value
}

// Row is an ordered mapping from column name to Value. Key order is kept so
// that column discovery and sample output follow the source.
type Row struct {
	cells []Cell
	index map[string]int
}

// NewRow builds a row from cells; a repeated name overwrites the earlier value
// but keeps its position.
func NewRow(cells ...Cell) Row {
	var r Row
	for _, c := range cells {
		r.Set(c.Name, c.Value)
	}
	return r
}

// Set stores v under name.
func (r *Row) Set(name string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.cells[i].Value = v
		return
	}
	r.index[name] = len(r.cells)
	r.cells = append(r.cells, Cell{Name: name, Value: v})
}

// Get returns the value under name, or Absent when the key is missing.
func (r Row) Get(name string) Value {
	if i, ok := r.index[name]; ok {
		return r.cells[i].Value
	}
	return Absent()
}

// Keys returns the column names in insertion order.
func (r Row) Keys() []string {
	keys := make([]string, len(r.cells))
	for i, c := range r.cells {
		keys[i] = c.Name
	}
	return keys
}

func (r Row) Cells() []Cell { return r.cells }

func (r Row) Len() int { return len(r.cells) }

// MarshalJSON writes the row as a JSON object with keys in insertion order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := c.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Any other JSON value
// decodes to an empty row, since it carries no columns.
func (r *Row) UnmarshalJSON(b []byte) error {
	*r = Row{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode row key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode row: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode row value %q: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

// Dataset is an ordered sequence of rows.
type Dataset []Row

// Columns returns the column set, taken from the first row only. Rows that
// carry extra keys do not extend it; rows missing a key read it as Absent.
func (d Dataset) Columns() []string {
	if len(d) == 0 {
		return nil
	}
	return d[0].Keys()
}

// Head returns up to n leading rows.
func (d Dataset) Head(n int) Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d) {
		n = len(d)
	}
	return d[:n]
}

// DecodeRows decodes a JSON array of row objects. It returns ErrNotArray for
// any non-array payload, including null.
func DecodeRows(raw []byte) (Dataset, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrNotArray
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return Dataset(rows), nil
}
