// Package analysis computes per-column statistical profiles of tabular
// datasets.
package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/filesense/internal/dataset"
)

// MaxTopValues caps the ranked category list of a categorical column.
const MaxTopValues = 5

// Kind is the inferred class of a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// CategoryCount is one ranked category with its count and its share of all
// rows, rounded to a whole percent.
type CategoryCount struct {
	Value   string
	Count   int
	Percent int
}

// String renders the category as "value (pct%)".
func (c CategoryCount) String() string {
	return fmt.Sprintf("%s (%d%%)", c.Value, c.Percent)
}

// ColumnProfile captures the inferred kind and statistics of one column.
// Min, Max and Avg are set for numeric columns; Unique and TopValues for
// categorical ones.
type ColumnProfile struct {
	Name    string
	Kind    Kind
	Missing int
	// Numeric stats
	Min float64
	Max float64
	Avg float64
	// Categorical stats
	Unique    int
	TopValues []CategoryCount
}

// Present is the number of rows holding a value for this column.
func (c ColumnProfile) Present(rowCount int) int { return rowCount - c.Missing }

// DatasetProfile summarizes a dataset. Columns follow the first row's key
// order.
type DatasetProfile struct {
	RowCount int
	Columns  []ColumnProfile
}

// Column looks up a column profile by name.
func (p *DatasetProfile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Profile computes the profile of ds. It returns false for an empty dataset.
//
// Columns come from the first row only: later rows missing a key count it as
// missing, and keys a later row adds are ignored. A column is numeric when it
// has at least one present value and every present value coerces to a finite
// number; everything else, including a column with no values at all, is
// categorical.
func Profile(ds dataset.Dataset) (*DatasetProfile, bool) {
	if len(ds) == 0 {
		return nil, false
	}
	cols := ds.Columns()
	p := &DatasetProfile{RowCount: len(ds), Columns: make([]ColumnProfile, 0, len(cols))}
	for _, name := range cols {
		p.Columns = append(p.Columns, profileColumn(ds, name))
	}
	return p, true
}

func profileColumn(ds dataset.Dataset, name string) ColumnProfile {
	present := make([]dataset.Value, 0, len(ds))
	for _, row := range ds {
		if v := row.Get(name); v.Present() {
			present = append(present, v)
		}
	}
	c := ColumnProfile{Name: name, Missing: len(ds) - len(present)}

	if nums, ok := allNumeric(present); ok {
		c.Kind = Numeric
		c.Min, c.Max = math.Inf(1), math.Inf(-1)
		// Running mean so columns near the float64 limit do not overflow.
		var mean float64
		for i, x := range nums {
			c.Min = math.Min(c.Min, x)
			c.Max = math.Max(c.Max, x)
			n := float64(i + 1)
			mean += x/n - mean/n
		}
		c.Min, c.Max = noNegZero(c.Min), noNegZero(c.Max)
		c.Avg = round2(math.Max(c.Min, math.Min(c.Max, mean)))
		return c
	}

	c.Kind = Categorical
	counts := make(map[string]int)
	var order []string
	for _, v := range present {
		key := v.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	c.Unique = len(order)
	tops := make([]CategoryCount, len(order))
	for i, k := range order {
		tops[i] = CategoryCount{Value: k, Count: counts[k], Percent: percent(counts[k], len(ds))}
	}
	// Stable keeps first-seen order among equal counts.
	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Count > tops[j].Count })
	if len(tops) > MaxTopValues {
		tops = tops[:MaxTopValues]
	}
	c.TopValues = tops
	return c
}

func allNumeric(vals []dataset.Value) ([]float64, bool) {
	if len(vals) == 0 {
		return nil, false
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		x, ok := ToNumber(v)
		if !ok {
			return nil, false
		}
		out[i] = x
	}
	return out, true
}

// round2 rounds half away from zero to two decimals. Values of 1e15 and
// above have no fractional digits left and are returned as is.
func round2(x float64) float64 {
	if math.Abs(x) >= 1e15 {
		return x
	}
	return noNegZero(math.Round(x*100) / 100)
}

func noNegZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}

func percent(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}

type numericJSON struct {
	Type    Kind    `json:"type"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
	Missing int     `json:"missing"`
}

type categoricalJSON struct {
	Type        Kind     `json:"type"`
	UniqueCount int      `json:"uniqueCount"`
	TopValues   []string `json:"topValues"`
	Missing     int      `json:"missing"`
}

// MarshalJSON writes the column in its wire form.
func (c ColumnProfile) MarshalJSON() ([]byte, error) {
	if c.Kind == Numeric {
		return encode(numericJSON{Type: Numeric, Min: c.Min, Max: c.Max, Avg: c.Avg, Missing: c.Missing})
	}
	tops := make([]string, len(c.TopValues))
	for i, t := range c.TopValues {
		tops[i] = t.String()
	}
	return encode(categoricalJSON{Type: Categorical, UniqueCount: c.Unique, TopValues: tops, Missing: c.Missing})
}

// MarshalJSON writes {"rowCount": n, "columns": {...}} with columns in
// profile order.
func (p DatasetProfile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"rowCount":%d,"columns":{`, p.RowCount)
	for i, c := range p.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encode(c.Name)
		if err != nil {
			return nil, err
		}
		v, err := c.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
