package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/models"
)

var tmplFuncs = template.FuncMap{
	"size": FormatSize,
	"dur":  durationCell,
	"pct":  func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	"when": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}

var detailTmpl = template.Must(template.New("detail").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document Staging Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
.err { color: #a00; }
</style>
</head>
<body>
<h1>Document Staging Report</h1>
<p>Generated {{when .GeneratedAt}} &mdash; {{len .Rows}} rows</p>
<table>
<tr><th>File</th><th>Status</th><th>User</th><th>Size</th><th>Selected</th><th>Upload</th><th>Processing</th><th>Error</th></tr>
{{range .Rows}}<tr>
<td>{{.Filename}}</td>
<td>{{.CompositeStatus}}</td>
<td>{{.OwnerUser}}</td>
<td>{{size .SizeBytes}}</td>
<td>{{when .SelectionTime}}</td>
<td>{{dur .UploadDuration}}</td>
<td>{{dur .ProcessingDuration}}</td>
<td class="err">{{.ErrorText}}</td>
</tr>{{end}}
</table>
</body>
</html>
`))

var summaryTmpl = template.Must(template.New("summary").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document Staging Summary</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>Document Staging Summary</h1>
<p>Generated {{when .GeneratedAt}} &mdash; {{.Stats.TotalFiles}} files total</p>

<h2>By status</h2>
<table>
<tr><th>Status</th><th>Count</th></tr>
{{range $st, $n := .Stats.StatusCounts}}<tr><td>{{$st}}</td><td>{{$n}}</td></tr>
{{end}}
</table>

<h2>By user</h2>
<table>
<tr><th>User</th><th>Files</th><th>Processed</th><th>Success</th><th>Total size</th></tr>
{{range .Stats.UserStats}}<tr>
<td>{{.User}}</td><td>{{.Total}}</td><td>{{.Processed}}</td><td>{{pct .SuccessRate}}</td><td>{{size .TotalSize}}</td>
</tr>{{end}}
</table>

<h2>By format</h2>
<table>
<tr><th>Extension</th><th>Count</th><th>Total size</th><th>Avg upload</th><th>Avg processing</th></tr>
{{range .Stats.FormatStats}}<tr>
<td>{{.Extension}}</td><td>{{.Count}}</td><td>{{size .TotalSize}}</td><td>{{dur .AvgUploadSecs}}</td><td>{{dur .AvgProcSecs}}</td>
</tr>{{end}}
</table>

<h2>Daily activity</h2>
<table>
<tr><th>Date</th><th>Selections</th></tr>
{{range .Stats.DailyStats}}<tr><td>{{.Date}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

// WriteHTMLDetail renders a standalone page with one table row per ledger row.
func WriteHTMLDetail(w io.Writer, rows []models.StagedFile) error {
	data := struct {
		GeneratedAt time.Time
		Rows        []models.StagedFile
	}{time.Now(), rows}
	if err := detailTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render detail report: %w", err)
	}
	return nil
}

// WriteHTMLSummary renders the aggregate view.
func WriteHTMLSummary(w io.Writer, stats *ledger.SummaryStats) error {
	data := struct {
		GeneratedAt time.Time
		Stats       *ledger.SummaryStats
	}{time.Now(), stats}
	if err := summaryTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render summary report: %w", err)
	}
	return nil
}
