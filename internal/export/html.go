package export

import (
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

var palette = []string{"#68a063", "#512bd4", "#00ADD8", "#FF0000", "#f0a30a", "#6c757d"}

type htmlStat struct {
	Label  string
	Values []string
}

type htmlCard struct {
	ID     string
	Title  string
	Labels []string
	Avg    []float64 // seconds, 0 when there is no data
	Colors []string
	Stats  []htmlStat
}

type htmlBreaking struct {
	Target     string
	MaxStable  int
	StopReason benchmark.StopReason
	Probes     int
}

type htmlPage struct {
	Title    string
	RunID    string
	Started  string
	Targets  []string
	Cards    []htmlCard
	Breaking []htmlBreaking
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body { font-family: system-ui; background:#f4f6f8; padding:30px }
.container { max-width:1200px; margin:auto; background:#fff; padding:30px; border-radius:12px }
.grid { display:grid; grid-template-columns:1fr 1fr; gap:30px }
.card { padding:20px; border:1px solid #ddd; border-radius:10px }
.stats { text-align:center; color:#555; margin-top:10px }
table { border-collapse:collapse; margin:20px auto }
td, th { padding:6px 14px; border-bottom:1px solid #ddd }
h1, .meta { text-align:center }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<p class="meta">Run {{.RunID}} started {{.Started}}</p>
<div class="grid">
{{- range .Cards}}
<div class="card">
<h2>{{.Title}}</h2>
<canvas id="{{.ID}}"></canvas>
<div class="stats">
{{- range .Stats}}
{{.Label}}: {{range $i, $v := .Values}}{{if $i}} | {{end}}{{index $.Targets $i}} {{$v}}{{end}}<br/>
{{- end}}
</div>
</div>
{{- end}}
</div>
{{- if .Breaking}}
<h2>Breaking Point</h2>
<table>
<tr><th>Target</th><th>Max Stable Concurrency</th><th>Stop Reason</th><th>Probes</th></tr>
{{- range .Breaking}}
<tr><td>{{.Target}}</td><td>{{.MaxStable}}</td><td>{{.StopReason}}</td><td>{{.Probes}}</td></tr>
{{- end}}
</table>
{{- end}}
</div>
<script>
{{- range .Cards}}
new Chart(document.getElementById({{.ID}}), {
    type: 'bar',
    data: {
        labels: {{.Labels}},
        datasets: [{
            label: 'Avg Response (s)',
            data: {{.Avg}},
            backgroundColor: {{.Colors}}
        }]
    },
    options: {
        responsive: true,
        plugins: { legend: { display: false } },
        scales: { y: { beginAtZero: true } }
    }
});
{{- end}}
</script>
</body>
</html>
`))

// ToHTML writes a self-contained report with one bar chart of average
// latency per category
func ToHTML(results *benchmark.Results, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "create %s", outputPath)
	}
	defer file.Close()

	if err := reportTemplate.Execute(file, buildPage(results)); err != nil {
		return errors.Wrap(err, "render HTML report")
	}
	return nil
}

func buildPage(results *benchmark.Results) htmlPage {
	page := htmlPage{
		Title:   strings.Join(results.Targets, " vs ") + " - Performance Report",
		RunID:   results.RunID,
		Started: results.StartedAt.Format(time.RFC1123),
		Targets: results.Targets,
	}

	for _, category := range results.SummaryCategories() {
		records := results.Summaries[category]
		card := htmlCard{
			ID:     string(category) + "Chart",
			Title:  string(category),
			Labels: results.Targets,
		}

		avg := htmlStat{Label: "Avg"}
		p95 := htmlStat{Label: "P95"}
		p99 := htmlStat{Label: "P99"}
		errs := htmlStat{Label: "Errors"}
		samples := htmlStat{Label: "Samples"}

		for i, t := range results.Targets {
			rec := records[t]
			card.Colors = append(card.Colors, palette[i%len(palette)])
			if rec.NoData {
				card.Avg = append(card.Avg, 0)
			} else {
				card.Avg = append(card.Avg, rec.Avg.Seconds())
			}
			avg.Values = append(avg.Values, seconds(rec.Avg, rec.NoData))
			p95.Values = append(p95.Values, seconds(rec.P95, rec.NoData))
			p99.Values = append(p99.Values, seconds(rec.P99, rec.NoData))
			errs.Values = append(errs.Values, fmt.Sprint(rec.ErrorCount))
			samples.Values = append(samples.Values, fmt.Sprint(rec.SampleCount))
		}

		card.Stats = []htmlStat{avg, p95, p99, errs, samples}
		page.Cards = append(page.Cards, card)
	}

	for _, t := range results.Targets {
		if bp, ok := results.BreakingPoints[t]; ok {
			page.Breaking = append(page.Breaking, htmlBreaking{
				Target:     t,
				MaxStable:  bp.MaxStableConcurrency,
				StopReason: bp.StopReason,
				Probes:     len(bp.Probes),
			})
		}
	}
	return page
}

func seconds(d time.Duration, noData bool) string {
	if noData {
		return "N/A"
	}
	return fmt.Sprintf("%.4fs", d.Seconds())
}
