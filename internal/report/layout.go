package report

import "math"

// MinBarPercent keeps zero and negative bars visible.
const MinBarPercent = 8.0

// Tone is the visual accent of a widget.
type Tone int

const (
	ToneDefault Tone = iota
	ToneGreen
	ToneRed
	ToneMuted
)

// Indicator is the direction glyph shown on a KPI tile.
type Indicator struct {
	Glyph string
	Tone  Tone
}

// TrendIndicator maps a KPI trend to its glyph. Anything but up or down is
// neutral.
func TrendIndicator(trend string) Indicator {
	switch trend {
	case "up":
		return Indicator{Glyph: "▲", Tone: ToneGreen}
	case "down":
		return Indicator{Glyph: "▼", Tone: ToneRed}
	default:
		return Indicator{Glyph: "■", Tone: ToneMuted}
	}
}

// ToneFor maps a KPI color to a tone; blue and unknown colors use the
// default accent.
func ToneFor(color string) Tone {
	switch color {
	case "green":
		return ToneGreen
	case "red":
		return ToneRed
	default:
		return ToneDefault
	}
}

// BarHeights scales each point to a percentage of the chart's own maximum,
// never below MinBarPercent. When the maximum is not positive every bar gets
// the floor.
func BarHeights(points []DataPoint) []float64 {
	out := make([]float64, len(points))
	if len(points) == 0 {
		return out
	}
	maxVal := math.Inf(-1)
	for _, p := range points {
		maxVal = math.Max(maxVal, float64(p.Value))
	}
	for i, p := range points {
		pct := 0.0
		if maxVal > 0 {
			pct = float64(p.Value) / maxVal * 100
		}
		out[i] = math.Max(pct, MinBarPercent)
	}
	return out
}

// Severity is the visual weight of a recommendation.
type Severity int

const (
	SeverityMedium Severity = iota
	SeverityHigh
)

// SeverityOf maps an impact to its severity; anything but "high" is medium.
func SeverityOf(impact string) Severity {
	if impact == "high" {
		return SeverityHigh
	}
	return SeverityMedium
}
