package prompt

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/filesense/internal/analysis"
	"github.com/KaramelBytes/filesense/internal/dataset"
)

func sampleDataset(t *testing.T) dataset.Dataset {
	t.Helper()
	ds, err := dataset.DecodeRows([]byte(`[
		{"age": "30", "city": "Lima", "note": "<b>vip</b>"},
		{"age": "40", "city": "Lima"},
		{"age": "", "city": "Cusco"},
		{"age": "22", "city": "Arequipa"},
		{"age": "51", "city": "Lima"},
		{"age": "63", "city": "Piura"}
	]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ds
}

func build(t *testing.T, lang string) string {
	t.Helper()
	ds := sampleDataset(t)
	p, ok := analysis.Profile(ds)
	if !ok {
		t.Fatalf("no profile")
	}
	out, err := Build(Input{Profile: p, FileName: "ventas.csv", SampleRows: SampleRows(ds, DefaultSampleRows), Language: lang})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return out
}

func TestBuildDeterministic(t *testing.T) {
	a := build(t, "English")
	b := build(t, "English")
	if a != b {
		t.Fatalf("prompt differs between identical calls")
	}
}

func TestBuildContents(t *testing.T) {
	out := build(t, "Français")
	for _, want := range []string{
		"Eres un Científico de Datos Senior",
		"COMPLETAMENTE EN FRANÇAIS.",
		`Archivo: "ventas.csv"`,
		"ESTADÍSTICAS DEL DATASET COMPLETO:\n{\n  \"rowCount\": 6,",
		`"type": "numeric"`,
		"MUESTRA DE FORMATO (primeras 5 filas):\n[\n  {\n    \"age\": \"30\",\n    \"city\": \"Lima\",",
		`"note": "<b>vip</b>"`,
		"en idioma Français:",
		`"analysisTitle"`,
		`"trend": "up/down/neutral"`,
		`"impact": "high | medium"`,
		`"type": "bar | line | pie | area"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(out, `"city": "Piura"`) {
		t.Errorf("sample should hold only the first 5 rows")
	}
}

// A missing language and an explicitly empty or blank one both fall back to
// Español; the request types cannot tell them apart.
func TestBuildDefaultLanguageForMissingOrEmpty(t *testing.T) {
	for _, lang := range []string{"", "   "} {
		out := build(t, lang)
		if !strings.Contains(out, "COMPLETAMENTE EN ESPAÑOL.") || !strings.Contains(out, "en idioma Español:") {
			t.Fatalf("language %q: default not applied:\n%s", lang, out)
		}
	}
}
