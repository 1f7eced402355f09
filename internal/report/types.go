// Package report holds the model's analysis result and renders it as a
// terminal or HTML dashboard.
package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AIResult is the structured analysis the model returns. Decoding is
// lenient: scalars of the wrong JSON type are coerced to text or numbers and
// list entries that are not objects decode as zero values.
type AIResult struct {
	AnalysisTitle   string           `json:"analysisTitle"`
	Summary         string           `json:"summary"`
	KPIs            []KPI            `json:"kpis"`
	Charts          []Chart          `json:"charts"`
	Recommendations []Recommendation `json:"recommendations"`

	raw json.RawMessage
}

// Raw is the JSON object the result was decoded from, or nil for a result
// built in code.
func (r *AIResult) Raw() json.RawMessage { return r.raw }

func (r *AIResult) UnmarshalJSON(b []byte) error {
	var w struct {
		AnalysisTitle   Text            `json:"analysisTitle"`
		Summary         Text            `json:"summary"`
		KPIs            json.RawMessage `json:"kpis"`
		Charts          json.RawMessage `json:"charts"`
		Recommendations json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = AIResult{
		AnalysisTitle:   string(w.AnalysisTitle),
		Summary:         string(w.Summary),
		KPIs:            decodeList[KPI](w.KPIs),
		Charts:          decodeList[Chart](w.Charts),
		Recommendations: decodeList[Recommendation](w.Recommendations),
		raw:             append(json.RawMessage(nil), b...),
	}
	return nil
}

// KPI is one headline indicator. Trend is up, down or neutral; Color is
// green, red or blue and may be empty.
type KPI struct {
	Title    string `json:"title"`
	Value    Text   `json:"value"`
	SubValue Text   `json:"subValue"`
	Trend    string `json:"trend"`
	Color    string `json:"color,omitempty"`
}

func (k *KPI) UnmarshalJSON(b []byte) error {
	var w struct {
		Title    Text `json:"title"`
		Value    Text `json:"value"`
		SubValue Text `json:"subValue"`
		Trend    Text `json:"trend"`
		Color    Text `json:"color"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*k = KPI{Title: string(w.Title), Value: w.Value, SubValue: w.SubValue, Trend: string(w.Trend), Color: string(w.Color)}
	return nil
}

// Chart is one chart of label/value points. Type is bar, line, pie or area.
type Chart struct {
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Data        []DataPoint `json:"data"`
}

func (c *Chart) UnmarshalJSON(b []byte) error {
	var w struct {
		Title       Text            `json:"title"`
		Type        Text            `json:"type"`
		Description Text            `json:"description"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*c = Chart{Title: string(w.Title), Type: string(w.Type), Description: string(w.Description), Data: decodeList[DataPoint](w.Data)}
	return nil
}

type DataPoint struct {
	Label Text   `json:"label"`
	Value Number `json:"value"`
}

// Recommendation is an action item. Impact is high or medium.
type Recommendation struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Impact string `json:"impact"`
}

func (r *Recommendation) UnmarshalJSON(b []byte) error {
	var w struct {
		Title  Text `json:"title"`
		Text   Text `json:"text"`
		Impact Text `json:"impact"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Recommendation{Title: string(w.Title), Text: string(w.Text), Impact: string(w.Impact)}
	return nil
}

// decodeList decodes a JSON array element by element. Elements that fail to
// decode stay zero; anything other than an array yields nil.
func decodeList[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, it := range items {
		_ = json.Unmarshal(it, &out[i])
	}
	return out
}

// Text is a string that also accepts JSON numbers and booleans, which models
// emit for fields such as KPI values.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*t = Text(buf.String())
	return nil
}

func (t Text) String() string { return string(t) }

// Number is a float that also accepts numeric strings such as "1,200" or
// "35%" and booleans as 1 or 0. Anything else reads as 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*n = Number(x)
	case bool:
		if x {
			*n = 1
		} else {
			*n = 0
		}
	case string:
		s := strings.NewReplacer(",", "", "%", "", "$", "", " ", "").Replace(x)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			f = 0
		}
		*n = Number(f)
	default:
		*n = 0
	}
	return nil
}
