package render

import (
	"html/template"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summary-analyzer/internal/model"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Company Analysis Report - {{.CompanyName}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #f4f4f4; }
.container { background-color: white; padding: 30px; border-radius: 10px; box-shadow: 0 0 10px rgba(0,0,0,0.1); }
h1 { color: #333; border-bottom: 3px solid #007bff; padding-bottom: 10px; }
h2 { color: #007bff; margin-top: 30px; }
.metadata { background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin-bottom: 30px; }
.section { margin-bottom: 25px; }
.info-grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 15px; margin-bottom: 30px; }
.info-item { background-color: #f8f9fa; padding: 10px; border-radius: 5px; }
.info-label { font-weight: bold; color: #666; }
.timestamp { text-align: right; color: #666; font-size: 0.9em; }
table { width: 100%; border-collapse: collapse; margin-top: 15px; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f8f9fa; }
.confidence { color: #888; }
</style>
</head>
<body>
<div class="container">
<h1>Investment Analysis Report</h1>
<div class="metadata">
<h3>{{.CompanyName}}</h3>
<div class="timestamp">Generated: {{.Timestamp}}</div>
</div>
<div class="info-grid">
{{- range .QuickFacts}}
<div class="info-item">
<div class="info-label">{{.Label}}</div>
<div>{{.Value}}</div>
</div>
{{- end}}
</div>
{{- range .Sections}}
<div class="section">
<h2>{{.Label}}</h2>
<p>{{.Body}}</p>
</div>
{{- end}}
<h2>Extracted Information Summary</h2>
<table>
<tr><th>Field</th><th>Value</th><th>Confidence</th></tr>
{{- range .Rows}}
<tr><td>{{.Label}}</td><td>{{.Value}}</td><td class="confidence">{{.Confidence}}</td></tr>
{{- end}}
</table>
</div>
</body>
</html>
`))

type htmlFact struct {
	Label string
	Value string
}

type htmlSection struct {
	Label string
	Body  template.HTML
}

type htmlRow struct {
	Label      string
	Value      string
	Confidence string
}

type htmlData struct {
	CompanyName string
	Timestamp   string
	QuickFacts  []htmlFact
	Sections    []htmlSection
	Rows        []htmlRow
}

func (r *Renderer) renderHTML(report *model.Report) (string, error) {
	data := htmlData{
		CompanyName: r.CompanyName(report),
		Timestamp:   report.GeneratedAt.Format(timestampLayout),
	}

	for _, name := range r.schema.QuickFacts() {
		data.QuickFacts = append(data.QuickFacts, htmlFact{
			Label: r.schema.Label(name),
			Value: displayValue(report.Extraction[name]),
		})
	}

	for _, sec := range r.schema.Sections() {
		data.Sections = append(data.Sections, htmlSection{
			Label: sec.Label,
			Body:  paragraph(sectionBody(report.Sections, sec.Key)),
		})
	}

	for _, name := range r.schema.Names() {
		field := report.Extraction[name]
		data.Rows = append(data.Rows, htmlRow{
			Label:      r.schema.Label(name),
			Value:      field.Value,
			Confidence: confidence(field),
		})
	}

	var sb strings.Builder
	if err := htmlTemplate.Execute(&sb, data); err != nil {
		return "", eris.Wrap(err, "render: execute html template")
	}
	return sb.String(), nil
}

// paragraph escapes section prose and preserves its line breaks.
func paragraph(body string) template.HTML {
	escaped := template.HTMLEscapeString(body)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
