package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/filesense/internal/i18n"
)

var chartInit = opts.Initialization{Width: "100%", Height: "360px"}

// RenderHTML writes a standalone dashboard page: one echarts chart per result
// chart, with the header, KPI grid and recommendations injected around them.
func RenderHTML(w io.Writer, res *AIResult, fileName string, text i18n.Copy) error {
	if res == nil {
		res = &AIResult{}
	}
	page := components.NewPage()
	page.PageTitle = res.AnalysisTitle
	if page.PageTitle == "" {
		page.PageTitle = "FileSense"
	}
	for _, c := range res.Charts {
		page.AddCharts(echart(c))
	}

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	var header, footer bytes.Buffer
	data := htmlData{Res: res, FileName: fileName, Text: text}
	if err := headerTmpl.Execute(&header, data); err != nil {
		return fmt.Errorf("render header: %w", err)
	}
	if err := footerTmpl.Execute(&footer, data); err != nil {
		return fmt.Errorf("render recommendations: %w", err)
	}

	out := buf.String()
	out = strings.Replace(out, "</head>", dashboardCSS+"</head>", 1)
	out = injectAfterBody(out, header.String())
	if strings.Contains(out, "</body>") {
		out = strings.Replace(out, "</body>", footer.String()+"</body>", 1)
	} else {
		out += footer.String()
	}
	_, err := io.WriteString(w, out)
	return err
}

// injectAfterBody inserts s right after the opening body tag, or at the top
// when the page has none.
func injectAfterBody(page, s string) string {
	i := strings.Index(page, "<body")
	if i < 0 {
		return s + page
	}
	j := strings.IndexByte(page[i:], '>')
	if j < 0 {
		return s + page
	}
	at := i + j + 1
	return page[:at] + "\n" + s + page[at:]
}

// echart builds the echarts widget for c. Unknown types render as bars.
func echart(c Chart) components.Charter {
	title := charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: c.Description})
	tooltip := charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)})
	legend := charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)})
	size := charts.WithInitializationOpts(chartInit)

	labels := make([]string, len(c.Data))
	for i, p := range c.Data {
		labels[i] = p.Label.String()
	}

	switch c.Type {
	case "pie":
		pie := charts.NewPie()
		pie.SetGlobalOptions(title, tooltip, size, charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}))
		items := make([]opts.PieData, len(c.Data))
		for i, p := range c.Data {
			items[i] = opts.PieData{Name: labels[i], Value: float64(p.Value)}
		}
		pie.AddSeries(c.Title, items, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
		return pie
	case "line", "area":
		line := charts.NewLine()
		line.SetGlobalOptions(title, tooltip, legend, size)
		items := make([]opts.LineData, len(c.Data))
		for i, p := range c.Data {
			items[i] = opts.LineData{Value: float64(p.Value)}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: string(accent)}),
		}
		if c.Type == "area" {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}))
		}
		line.SetXAxis(labels).AddSeries(c.Title, items, seriesOpts...)
		return line
	default:
		bar := charts.NewBar()
		bar.SetGlobalOptions(title, tooltip, legend, size)
		items := make([]opts.BarData, len(c.Data))
		for i, p := range c.Data {
			items[i] = opts.BarData{Value: float64(p.Value)}
		}
		bar.SetXAxis(labels).AddSeries(c.Title, items, charts.WithItemStyleOpts(opts.ItemStyle{Color: string(accent)}))
		return bar
	}
}

type htmlData struct {
	Res      *AIResult
	FileName string
	Text     i18n.Copy
}

var funcs = template.FuncMap{
	"trend": func(t string) string { return TrendIndicator(t).Glyph },
	"trendClass": func(t string) string {
		switch TrendIndicator(t).Tone {
		case ToneGreen:
			return "up"
		case ToneRed:
			return "down"
		}
		return "neutral"
	},
	"toneClass": func(c string) string {
		if ToneFor(c) == ToneRed {
			return "red"
		}
		return "green"
	},
	"high": func(impact string) bool { return SeverityOf(impact) == SeverityHigh },
}

var headerTmpl = template.Must(template.New("header").Funcs(funcs).Parse(`<header class="fs-header">
  <div class="fs-badge">{{.Text.Completed}}</div> <span class="fs-file">{{.FileName}}</span>
  <h1>{{.Res.AnalysisTitle}}</h1>
  {{with .Res.Summary}}<p class="fs-summary">"{{.}}"</p>{{end}}
</header>
{{if .Res.KPIs}}<section class="fs-kpis" aria-label="{{.Text.KPIs}}">
{{range .Res.KPIs}}  <div class="fs-kpi">
    <div class="fs-kpi-head"><span>{{.Title}}</span><span class="fs-trend {{trendClass .Trend}}">{{trend .Trend}}</span></div>
    <div class="fs-kpi-value">{{.Value}}</div>
    <div class="fs-kpi-sub {{toneClass .Color}}">{{.SubValue}}</div>
  </div>
{{end}}</section>{{end}}
`))

var footerTmpl = template.Must(template.New("footer").Funcs(funcs).Parse(`{{if .Res.Recommendations}}<section class="fs-recs">
  <h2>{{.Text.Recommendations}}</h2>
{{range .Res.Recommendations}}  <div class="fs-rec">
    {{if high .Impact}}<span class="fs-impact high">{{$.Text.ImpactHigh}}</span>{{else}}<span class="fs-impact medium">{{$.Text.ImpactMedium}}</span>{{end}}
    <h3>{{.Title}}</h3>
    <p>{{.Text}}</p>
  </div>
{{end}}</section>{{end}}
`))

const dashboardCSS = `<style>
body { font-family: system-ui, sans-serif; background: #fafafa; color: #0f172a; margin: 0 auto; max-width: 1200px; padding: 24px; }
.fs-badge { display: inline-block; background: #ecfdf5; color: #059669; font-weight: 800; font-size: 12px; text-transform: uppercase; padding: 4px 10px; border-radius: 999px; }
.fs-file { color: #64748b; font-weight: 700; font-size: 14px; }
.fs-header h1 { font-size: 40px; letter-spacing: -0.02em; margin: 12px 0; }
.fs-summary { font-style: italic; border-left: 4px solid #10b981; padding: 8px 16px; color: #475569; }
.fs-kpis { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 16px; margin: 24px 0; }
.fs-kpi { background: #fff; border: 1px solid #e2e8f0; border-radius: 24px; padding: 20px; }
.fs-kpi-head { display: flex; justify-content: space-between; font-size: 11px; font-weight: 900; color: #94a3b8; text-transform: uppercase; }
.fs-kpi-value { font-size: 32px; font-weight: 900; margin: 8px 0; }
.fs-kpi-sub.green, .fs-trend.up { color: #059669; }
.fs-kpi-sub.red, .fs-trend.down { color: #dc2626; }
.fs-trend.neutral { color: #cbd5e1; }
.fs-recs { margin-top: 32px; display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 16px; }
.fs-recs h2 { grid-column: 1 / -1; text-align: center; text-transform: uppercase; letter-spacing: 0.3em; color: #94a3b8; font-size: 18px; }
.fs-rec { background: #fff; border: 1px solid #e2e8f0; border-radius: 20px; padding: 20px; }
.fs-impact { font-size: 10px; font-weight: 900; text-transform: uppercase; padding: 4px 10px; border-radius: 999px; }
.fs-impact.high { background: #fef2f2; color: #dc2626; }
.fs-impact.medium { background: #ecfdf5; color: #059669; }
</style>
`
