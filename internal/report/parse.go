package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports model content that is not a JSON object.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError lists the ways a result breaks the expected shape.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid analysis result: " + strings.Join(e.Problems, "; ")
}

var errNotObject = errors.New("content is not a JSON object")

// Parse decodes model content optimistically: any JSON object is accepted and
// missing fields stay zero. A surrounding markdown code fence is tolerated.
func Parse(content []byte) (*AIResult, error) {
	body := stripFence(bytes.TrimSpace(content))
	if len(body) == 0 || body[0] != '{' {
		return nil, &ParseError{Content: string(content), Err: errNotObject}
	}
	var res AIResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &ParseError{Content: string(content), Err: err}
	}
	return &res, nil
}

func stripFence(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	} else {
		return b
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}

var (
	validTrends  = map[string]bool{"up": true, "down": true, "neutral": true}
	validColors  = map[string]bool{"": true, "green": true, "red": true, "blue": true}
	validCharts  = map[string]bool{"bar": true, "line": true, "pie": true, "area": true}
	validImpacts = map[string]bool{"high": true, "medium": true}
)

// Validate checks required fields and enumerated values. It is used only in
// strict mode; rendering never requires it.
func (r *AIResult) Validate() error {
	var p []string
	if strings.TrimSpace(r.AnalysisTitle) == "" {
		p = append(p, "analysisTitle is required")
	}
	if strings.TrimSpace(r.Summary) == "" {
		p = append(p, "summary is required")
	}
	for i, k := range r.KPIs {
		if k.Title == "" {
			p = append(p, fmt.Sprintf("kpis[%d].title is required", i))
		}
		if !validTrends[k.Trend] {
			p = append(p, fmt.Sprintf("kpis[%d].trend %q is not up|down|neutral", i, k.Trend))
		}
		if !validColors[k.Color] {
			p = append(p, fmt.Sprintf("kpis[%d].color %q is not green|red|blue", i, k.Color))
		}
	}
	for i, c := range r.Charts {
		if c.Title == "" {
			p = append(p, fmt.Sprintf("charts[%d].title is required", i))
		}
		if !validCharts[c.Type] {
			p = append(p, fmt.Sprintf("charts[%d].type %q is not bar|line|pie|area", i, c.Type))
		}
		if len(c.Data) == 0 {
			p = append(p, fmt.Sprintf("charts[%d].data is empty", i))
		}
	}
	for i, rec := range r.Recommendations {
		if rec.Title == "" {
			p = append(p, fmt.Sprintf("recommendations[%d].title is required", i))
		}
		if !validImpacts[rec.Impact] {
			p = append(p, fmt.Sprintf("recommendations[%d].impact %q is not high|medium", i, rec.Impact))
		}
	}
	if len(p) > 0 {
		return &SchemaError{Problems: p}
	}
	return nil
}
