package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders a compact summary of the profile for terminals and docs.
func (p *DatasetProfile) Markdown(fileName string) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if fileName != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", fileName))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(p.Columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Columns {
		missPct := 0.0
		if p.RowCount > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(p.RowCount)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (present %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.Present(p.RowCount), missPct))
		switch c.Kind {
		case Numeric:
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, avg %.4g", c.Min, c.Max, c.Avg))
		case Categorical:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(safeVal(kv.String()))
				}
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
