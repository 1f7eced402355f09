package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/filesense/internal/i18n"
)

const sampleResult = `{
  "analysisTitle": "Ventas 2024",
  "summary": "Las ventas crecen en Lima.",
  "kpis": [
    {"title": "Ingresos", "value": 125000, "subValue": "+12% vs 2023", "trend": "up", "color": "green"},
    {"title": "Churn", "value": "4%", "subValue": "estable", "trend": "flat"}
  ],
  "charts": [
    {"title": "Por ciudad", "type": "bar", "description": "Lima lidera", "data": [{"label": "Lima", "value": 100}, {"label": "Cusco", "value": "0"}]},
    {"title": "Mensual", "type": "area", "description": "Tendencia", "data": [{"label": "Ene", "value": 3}, {"label": "Feb", "value": 5}]},
    {"title": "Mix", "type": "pie", "description": "Canales", "data": [{"label": "Web", "value": 60}, {"label": "Tienda", "value": 40}]}
  ],
  "recommendations": [
    {"title": "Expandir en Lima", "text": "Abrir dos tiendas.", "impact": "high"},
    {"title": "Revisar precios", "text": "Ajustar margen.", "impact": "medium"}
  ]
}`

func TestParseOptimistic(t *testing.T) {
	res, err := Parse([]byte(sampleResult))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.AnalysisTitle != "Ventas 2024" || len(res.KPIs) != 2 || len(res.Charts) != 3 || len(res.Recommendations) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.KPIs[0].Value != "125000" || res.KPIs[1].Value != "4%" {
		t.Fatalf("kpi values = %q, %q", res.KPIs[0].Value, res.KPIs[1].Value)
	}
	if res.Charts[0].Data[1].Value != 0 || res.Charts[0].Data[0].Value != 100 {
		t.Fatalf("chart values = %+v", res.Charts[0].Data)
	}

	partial, err := Parse([]byte(`{"summary": "solo resumen"}`))
	if err != nil {
		t.Fatalf("partial parse: %v", err)
	}
	if partial.Summary != "solo resumen" || partial.KPIs != nil {
		t.Fatalf("partial = %+v", partial)
	}
}

func TestParseCoercesMismatchedTypes(t *testing.T) {
	in := `{
  "analysisTitle": 2024,
  "summary": true,
  "kpis": [{"title": "Ingresos", "value": 1200, "trend": "up"}, "basura"],
  "charts": [{"title": 7, "type": "bar", "data": [{"label": 1, "value": true}, {"label": "b", "value": {"x": 1}}, 3]}],
  "recommendations": {"not": "a list"}
}`
	res, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.AnalysisTitle != "2024" || res.Summary != "true" {
		t.Fatalf("title/summary = %q, %q", res.AnalysisTitle, res.Summary)
	}
	if len(res.KPIs) != 2 || res.KPIs[0].Value != "1200" || res.KPIs[1] != (KPI{}) {
		t.Fatalf("kpis = %+v", res.KPIs)
	}
	c := res.Charts[0]
	if c.Title != "7" || len(c.Data) != 3 || c.Data[0].Label != "1" || c.Data[0].Value != 1 || c.Data[1].Value != 0 {
		t.Fatalf("chart = %+v", c)
	}
	if res.Recommendations != nil {
		t.Fatalf("recommendations = %+v", res.Recommendations)
	}
}

func TestParseKeepsModelJSON(t *testing.T) {
	in := `{"analysisTitle":"t","kpis":[{"title":"a","value":1200}],"extra":{"source":"model"}}`
	res, err := Parse([]byte("```json\n" + in + "\n```"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(res.Raw()) != in {
		t.Fatalf("raw = %s", res.Raw())
	}
	if (&AIResult{}).Raw() != nil {
		t.Fatalf("built result has raw content")
	}
	var back map[string]any
	if err := json.Unmarshal(res.Raw(), &back); err != nil {
		t.Fatal(err)
	}
	if _, ok := back["extra"]; !ok {
		t.Fatalf("extra field dropped: %v", back)
	}
}

func TestParseFencedContent(t *testing.T) {
	res, err := Parse([]byte("```json\n{\"analysisTitle\": \"x\"}\n```"))
	if err != nil || res.AnalysisTitle != "x" {
		t.Fatalf("fenced parse: %+v, %v", res, err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "not json", "[1,2]", `{"summary": `} {
		_, err := Parse([]byte(in))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) err = %v, want *ParseError", in, err)
		}
	}
}

func TestValidate(t *testing.T) {
	res, _ := Parse([]byte(sampleResult))
	err := res.Validate()
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected schema error for trend \"flat\", got %v", err)
	}
	if len(se.Problems) != 1 || !strings.Contains(se.Problems[0], `kpis[1].trend "flat"`) {
		t.Fatalf("problems = %v", se.Problems)
	}
	res.KPIs[1].Trend = "neutral"
	if err := res.Validate(); err != nil {
		t.Fatalf("valid result rejected: %v", err)
	}
	if err := (&AIResult{}).Validate(); err == nil {
		t.Fatalf("empty result should fail validation")
	}
}

func TestTrendAndTone(t *testing.T) {
	if TrendIndicator("up").Tone != ToneGreen || TrendIndicator("down").Tone != ToneRed {
		t.Fatalf("up/down tones wrong")
	}
	if TrendIndicator("").Tone != ToneMuted || TrendIndicator("sideways").Glyph != TrendIndicator("neutral").Glyph {
		t.Fatalf("unknown trends should be neutral")
	}
	if ToneFor("green") != ToneGreen || ToneFor("red") != ToneRed || ToneFor("blue") != ToneDefault || ToneFor("") != ToneDefault {
		t.Fatalf("tone mapping wrong")
	}
	if SeverityOf("high") != SeverityHigh || SeverityOf("medium") != SeverityMedium || SeverityOf("critical") != SeverityMedium {
		t.Fatalf("severity mapping wrong")
	}
}

func TestBarHeights(t *testing.T) {
	cases := []struct {
		in   []Number
		want []float64
	}{
		{[]Number{100, 50, 0}, []float64{100, 50, MinBarPercent}},
		{[]Number{4, 2, 1}, []float64{100, 50, 25}},
		{[]Number{0, 0}, []float64{MinBarPercent, MinBarPercent}},
		{[]Number{-5, -1}, []float64{MinBarPercent, MinBarPercent}},
		{[]Number{10, -3}, []float64{100, MinBarPercent}},
		{nil, []float64{}},
	}
	for _, c := range cases {
		pts := make([]DataPoint, len(c.in))
		for i, v := range c.in {
			pts[i] = DataPoint{Value: v}
		}
		if got := BarHeights(pts); !reflect.DeepEqual(got, c.want) {
			t.Errorf("BarHeights(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRenderTerminal(t *testing.T) {
	res, _ := Parse([]byte(sampleResult))
	var buf bytes.Buffer
	if err := RenderTerminal(&buf, res, "ventas.csv", i18n.Spanish.Copy); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ANÁLISIS COMPLETADO", "ventas.csv", "Ventas 2024", "INGRESOS", "125000", "Por ciudad", "Lima", "IMPACTO ALTO", "Expandir en Lima", "IMPACTO MEDIO", "RECOMENDACIONES"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}

func TestRenderTerminalEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTerminal(&buf, &AIResult{}, "x.csv", i18n.English.Copy); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := RenderTerminal(&buf, nil, "x.csv", i18n.English.Copy); err != nil {
		t.Fatalf("render nil: %v", err)
	}
}

func TestRenderHTML(t *testing.T) {
	res, _ := Parse([]byte(sampleResult))
	res.Recommendations[0].Text = "<script>alert(1)</script>"
	var buf bytes.Buffer
	if err := RenderHTML(&buf, res, "ventas.csv", i18n.English.Copy); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Ventas 2024", "Analysis Completed", "ventas.csv", "Ingresos", "High Impact", "Medium Impact", "echarts", "fs-kpi"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatalf("recommendation text must be escaped")
	}
}
