// Package prompt builds the model instruction for a dataset analysis.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/filesense/internal/analysis"
	"github.com/KaramelBytes/filesense/internal/dataset"
)

// DefaultSampleRows is how many leading rows are shown to the model.
const DefaultSampleRows = 5

// DefaultLanguage is the report language when the caller gives none.
const DefaultLanguage = "Español"

// SystemInstruction restricts the model to a bare JSON reply.
const SystemInstruction = "Eres una API que SOLO devuelve JSON válido. No incluyas texto adicional."

// Input is everything the prompt is built from.
type Input struct {
	Profile    *analysis.DatasetProfile
	FileName   string
	SampleRows dataset.Dataset
	// SampleSize is the number of rows the sample was cut to; zero means
	// DefaultSampleRows.
	SampleSize int
	Language   string
}

const schema = `{
  "analysisTitle": "Título profesional y específico",
  "summary": "Resumen ejecutivo profundo",
  "kpis": [
    { "title": "Nombre KPI", "value": "Valor", "subValue": "Contexto", "trend": "up/down/neutral", "color": "green/red/blue" }
  ],
  "charts": [
    {
      "title": "Título del Gráfico",
      "type": "bar | line | pie | area",
      "description": "Explicación de la tendencia",
      "data": [
        { "label": "Categoría", "value": 100 }
      ]
    }
  ],
  "recommendations": [
    { "title": "Acción Crítica", "text": "Recomendación detallada", "impact": "high | medium" }
  ]
}`

// SampleRows returns the first n rows of ds, verbatim.
func SampleRows(ds dataset.Dataset, n int) dataset.Dataset {
	return ds.Head(n)
}

// Build renders the instruction text. Identical inputs give byte-identical
// output. An empty or blank Language means DefaultLanguage.
func Build(in Input) (string, error) {
	lang := in.Language
	if strings.TrimSpace(lang) == "" {
		lang = DefaultLanguage
	}
	stats, err := indentJSON(in.Profile)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	sample := in.SampleRows
	if sample == nil {
		sample = dataset.Dataset{}
	}
	rows, err := indentJSON(sample)
	if err != nil {
		return "", fmt.Errorf("encode sample rows: %w", err)
	}

	var b strings.Builder
	b.WriteString("\nEres un Científico de Datos Senior experto en Business Intelligence.\n\n")
	fmt.Fprintf(&b, "Idioma del reporte: EL REPORTE DEBE ESTAR COMPLETAMENTE EN %s.\n\n", cases.Upper(language.Und).String(lang))
	fmt.Fprintf(&b, "Archivo: \"%s\"\n\n", in.FileName)
	b.WriteString("ESTADÍSTICAS DEL DATASET COMPLETO:\n")
	b.WriteString(stats)
	size := in.SampleSize
	if size <= 0 {
		size = DefaultSampleRows
	}
	fmt.Fprintf(&b, "\n\nMUESTRA DE FORMATO (primeras %d filas):\n", size)
	b.WriteString(rows)
	b.WriteString("\n\nGenera un reporte estratégico y detallado. Busca correlaciones, tendencias y anomalías.\n")
	fmt.Fprintf(&b, "Responde EXCLUSIVAMENTE con este JSON (sin markdown) en idioma %s:\n\n", lang)
	b.WriteString(schema)
	b.WriteString("\n")
	return b.String(), nil
}

func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
