package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/filesense/internal/i18n"
)

// Width of a full-scale bar in terminal cells.
const barCells = 32

var (
	accent  = lipgloss.Color("#10B981")
	danger  = lipgloss.Color("#EF4444")
	muted   = lipgloss.Color("#71717A")
	white   = lipgloss.Color("#FFFFFF")
	surface = lipgloss.Color("#27272A")
)

var (
	badgeStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	summaryStyle = lipgloss.NewStyle().Italic(true).Foreground(muted).BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(accent).PaddingLeft(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(muted)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	tileStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(surface).Padding(0, 1).MarginRight(1)
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	barStyle     = lipgloss.NewStyle().Foreground(accent)
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(danger)
	mediumStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

func toneStyle(t Tone) lipgloss.Style {
	switch t {
	case ToneRed:
		return lipgloss.NewStyle().Foreground(danger)
	case ToneMuted:
		return mutedStyle
	default:
		return lipgloss.NewStyle().Foreground(accent)
	}
}

// RenderTerminal writes the dashboard: header, KPI tiles, one horizontal bar
// chart per result chart, then recommendation cards. Missing fields render
// as blanks.
func RenderTerminal(w io.Writer, res *AIResult, fileName string, text i18n.Copy) error {
	if res == nil {
		res = &AIResult{}
	}
	var b strings.Builder

	b.WriteString(badgeStyle.Render("✓ "+strings.ToUpper(text.Completed)) + "  " + mutedStyle.Render(fileName) + "\n\n")
	b.WriteString(titleStyle.Render(res.AnalysisTitle) + "\n")
	if res.Summary != "" {
		b.WriteString(summaryStyle.Render("\""+res.Summary+"\"") + "\n")
	}

	if len(res.KPIs) > 0 {
		b.WriteString("\n" + sectionStyle.Render("▸ "+strings.ToUpper(text.KPIs)) + "\n")
		tiles := make([]string, 0, len(res.KPIs))
		for _, k := range res.KPIs {
			tiles = append(tiles, kpiTile(k))
		}
		for len(tiles) > 0 {
			n := min(4, len(tiles))
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tiles[:n]...) + "\n")
			tiles = tiles[n:]
		}
	}

	if len(res.Charts) > 0 {
		b.WriteString("\n" + sectionStyle.Render("▸ "+strings.ToUpper(text.Charts)) + "\n")
		for _, c := range res.Charts {
			b.WriteString(chartBlock(c))
		}
	}

	if len(res.Recommendations) > 0 {
		b.WriteString("\n" + sectionStyle.Render("▸ "+strings.ToUpper(text.Recommendations)) + "\n")
		for _, r := range res.Recommendations {
			b.WriteString(recommendationCard(r, text) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func kpiTile(k KPI) string {
	ind := TrendIndicator(k.Trend)
	head := mutedStyle.Render(strings.ToUpper(k.Title)) + " " + toneStyle(ind.Tone).Render(ind.Glyph)
	body := valueStyle.Render(k.Value.String())
	sub := toneStyle(ToneFor(k.Color)).Render(k.SubValue.String())
	return tileStyle.Render(lipgloss.JoinVertical(lipgloss.Left, head, body, sub))
}

func chartBlock(c Chart) string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(c.Title))
	if c.Type != "" {
		b.WriteString(" " + mutedStyle.Render("("+c.Type+")"))
	}
	b.WriteString("\n")
	if c.Description != "" {
		b.WriteString(mutedStyle.Render(c.Description) + "\n")
	}
	labelWidth := 0
	for _, p := range c.Data {
		labelWidth = max(labelWidth, lipgloss.Width(p.Label.String()))
	}
	labelWidth = min(labelWidth, 24)
	heights := BarHeights(c.Data)
	for i, p := range c.Data {
		label := truncate(p.Label.String(), labelWidth)
		cells := int(math.Round(heights[i] / 100 * barCells))
		cells = max(cells, 1)
		fmt.Fprintf(&b, "  %-*s %s %s\n", labelWidth, label, barStyle.Render(strings.Repeat("█", cells)), formatValue(float64(p.Value)))
	}
	return b.String()
}

func recommendationCard(r Recommendation, text i18n.Copy) string {
	badge := mediumStyle.Render("● " + strings.ToUpper(text.ImpactMedium))
	border := accent
	if SeverityOf(r.Impact) == SeverityHigh {
		badge = highStyle.Render("● " + strings.ToUpper(text.ImpactHigh))
		border = danger
	}
	body := lipgloss.JoinVertical(lipgloss.Left, badge, titleStyle.Render(r.Title), r.Text)
	return cardStyle.BorderForeground(border).Render(body)
}

// formatValue prints integers without decimals and others with up to two.
func formatValue(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return groupThousands(strconv.FormatInt(int64(f), 10))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
