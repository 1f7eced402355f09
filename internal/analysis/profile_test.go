package analysis

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/filesense/internal/dataset"
)

func row(kv ...any) dataset.Row {
	var r dataset.Row
	for i := 0; i+1 < len(kv); i += 2 {
		name := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			r.Set(name, dataset.String(v))
		case float64:
			r.Set(name, dataset.Number(v))
		case int:
			r.Set(name, dataset.Number(float64(v)))
		case nil:
			r.Set(name, dataset.Absent())
		}
	}
	return r
}

func topStrings(c ColumnProfile) []string {
	out := make([]string, len(c.TopValues))
	for i, t := range c.TopValues {
		out[i] = t.String()
	}
	return out
}

func TestProfileExample(t *testing.T) {
	ds := dataset.Dataset{
		row("age", "30", "city", "Lima"),
		row("age", "40", "city", "Lima"),
		row("age", "", "city", "Cusco"),
	}
	p, ok := Profile(ds)
	if !ok {
		t.Fatalf("expected a profile")
	}
	if p.RowCount != 3 {
		t.Fatalf("rowCount = %d, want 3", p.RowCount)
	}
	age, _ := p.Column("age")
	if age.Kind != Numeric || age.Min != 30 || age.Max != 40 || age.Avg != 35 || age.Missing != 1 {
		t.Fatalf("age = %+v", age)
	}
	city, _ := p.Column("city")
	if city.Kind != Categorical || city.Unique != 2 || city.Missing != 0 {
		t.Fatalf("city = %+v", city)
	}
	if got, want := topStrings(city), []string{"Lima (67%)", "Cusco (33%)"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("city top = %v, want %v", got, want)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"rowCount":3,"columns":{"age":{"type":"numeric","min":30,"max":40,"avg":35,"missing":1},` +
		`"city":{"type":"categorical","uniqueCount":2,"topValues":["Lima (67%)","Cusco (33%)"],"missing":0}}}`
	if string(b) != want {
		t.Fatalf("json =\n%s\nwant\n%s", b, want)
	}
}

func TestProfileEmpty(t *testing.T) {
	if p, ok := Profile(nil); ok || p != nil {
		t.Fatalf("nil dataset should yield no profile")
	}
	if p, ok := Profile(dataset.Dataset{}); ok || p != nil {
		t.Fatalf("empty dataset should yield no profile")
	}
}

func TestProfileMixedColumnIsCategorical(t *testing.T) {
	ds := dataset.Dataset{row("v", "1"), row("v", "2"), row("v", "abc")}
	p, _ := Profile(ds)
	c, _ := p.Column("v")
	if c.Kind != Categorical || c.Unique != 3 {
		t.Fatalf("v = %+v", c)
	}
}

func TestProfileAllMissingIsCategorical(t *testing.T) {
	ds := dataset.Dataset{row("v", ""), row("v", nil), row("w", 1)}
	p, _ := Profile(ds)
	c, _ := p.Column("v")
	if c.Kind != Categorical || c.Unique != 0 || len(c.TopValues) != 0 || c.Missing != 3 {
		t.Fatalf("v = %+v", c)
	}
	b, _ := json.Marshal(c)
	if !strings.Contains(string(b), `"topValues":[]`) {
		t.Fatalf("empty topValues should encode as []: %s", b)
	}
}

func TestProfileColumnsFromFirstRow(t *testing.T) {
	ds := dataset.Dataset{row("a", 1), row("a", 2, "extra", "x"), row("b", "y")}
	p, _ := Profile(ds)
	if len(p.Columns) != 1 || p.Columns[0].Name != "a" {
		t.Fatalf("columns = %+v", p.Columns)
	}
	if p.Columns[0].Missing != 1 {
		t.Fatalf("a missing = %d, want 1", p.Columns[0].Missing)
	}
}

func TestProfileTopValuesTiesAndLimit(t *testing.T) {
	vals := []string{"g", "f", "e", "d", "c", "b", "a", "a", "c"}
	var ds dataset.Dataset
	for _, v := range vals {
		ds = append(ds, row("k", v))
	}
	p, _ := Profile(ds)
	c, _ := p.Column("k")
	want := []string{"c (22%)", "a (22%)", "g (11%)", "f (11%)", "e (11%)"}
	if got := topStrings(c); !reflect.DeepEqual(got, want) {
		t.Fatalf("top = %v, want %v", got, want)
	}
	if c.Unique != 7 {
		t.Fatalf("unique = %d, want 7", c.Unique)
	}
}

func TestProfileTextCollapsesNumbersAndStrings(t *testing.T) {
	ds := dataset.Dataset{row("k", 30), row("k", "30"), row("k", "x")}
	p, _ := Profile(ds)
	c, _ := p.Column("k")
	if c.Unique != 2 || c.TopValues[0].Value != "30" || c.TopValues[0].Count != 2 {
		t.Fatalf("k = %+v", c)
	}
}

func TestProfileNumericMixedKinds(t *testing.T) {
	ds := dataset.Dataset{row("n", 1.005), row("n", " 2 "), row("n", "0x10"), row("n", "-1e1"), row("n", " ")}
	p, _ := Profile(ds)
	c, _ := p.Column("n")
	if c.Kind != Numeric {
		t.Fatalf("n = %+v", c)
	}
	if c.Min != -10 || c.Max != 16 || c.Missing != 0 {
		t.Fatalf("n = %+v", c)
	}
	// (1.005 + 2 + 16 - 10 + 0) / 5 = 1.801
	if c.Avg != 1.8 {
		t.Fatalf("avg = %v, want 1.8", c.Avg)
	}
}

func TestProfileInvariants(t *testing.T) {
	ds := dataset.Dataset{
		row("a", "1", "b", "x", "c", ""),
		row("a", "", "b", "y", "c", "3.5"),
		row("a", "7", "b", "", "c", "-2"),
		row("a", "2", "b", "x"),
	}
	p1, _ := Profile(ds)
	p2, _ := Profile(ds)
	if !reflect.DeepEqual(p1, p2) {
		t.Fatalf("profile is not deterministic")
	}
	for _, c := range p1.Columns {
		if c.Present(p1.RowCount)+c.Missing != p1.RowCount {
			t.Errorf("%s: present+missing != rowCount", c.Name)
		}
		if c.Kind == Numeric && !(c.Min <= c.Avg && c.Avg <= c.Max) {
			t.Errorf("%s: min <= avg <= max violated: %+v", c.Name, c)
		}
		if len(c.TopValues) > MaxTopValues {
			t.Errorf("%s: too many top values", c.Name)
		}
	}
}

func TestProfileHugeValuesStayFinite(t *testing.T) {
	for _, ds := range []dataset.Dataset{
		{row("x", "1e307")},
		{row("x", "1e308"), row("x", "1e308")},
		{row("x", "-1.7e308"), row("x", "1.7e308"), row("x", "1.7e308")},
	} {
		p, _ := Profile(ds)
		c, _ := p.Column("x")
		if c.Kind != Numeric || math.IsInf(c.Avg, 0) || math.IsNaN(c.Avg) {
			t.Fatalf("x = %+v", c)
		}
		if !(c.Min <= c.Avg && c.Avg <= c.Max) {
			t.Fatalf("min <= avg <= max violated: %+v", c)
		}
		if _, err := json.Marshal(p); err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
}

func TestProfileNegativeZero(t *testing.T) {
	p, _ := Profile(dataset.Dataset{row("z", "-0"), row("z", math.Copysign(0, -1))})
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "-0") {
		t.Fatalf("negative zero in %s", b)
	}
}

func TestToNumber(t *testing.T) {
	ok := map[string]float64{
		"42": 42, " -3.5 ": -3.5, ".5": 0.5, "5.": 5, "1e3": 1000, "+7": 7,
		"0x1F": 31, "0b101": 5, "0o17": 15, "": 0, "  ": 0,
	}
	for in, want := range ok {
		got, good := ToNumber(dataset.String(in))
		if !good || got != want {
			t.Errorf("ToNumber(%q) = %v, %v; want %v", in, got, good, want)
		}
	}
	for _, in := range []string{"abc", "1,5", "Infinity", "-Infinity", "NaN", "inf", "1_000", "0x", "-0x10", "1e400", "12px"} {
		if _, good := ToNumber(dataset.String(in)); good {
			t.Errorf("ToNumber(%q) should fail", in)
		}
	}
	if _, good := ToNumber(dataset.Absent()); good {
		t.Errorf("absent should not coerce")
	}
}

func TestMarkdown(t *testing.T) {
	ds := dataset.Dataset{row("age", "30", "city", "Lima"), row("age", "40", "city", "Cusco")}
	p, _ := Profile(ds)
	md := p.Markdown("people.csv")
	for _, want := range []string{"[DATASET SUMMARY]", "File: people.csv", "Rows: 2", "[SCHEMA]", "- age: numeric", "- city: categorical", "Lima (50%)"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
