// Package render serializes compiled reports into Markdown and HTML
// artifacts. Rendering is pure: the same report always produces the
// same bytes, and both formats carry the same field, value, and
// confidence data.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

// unknownCompany is shown when the document never named the company.
const unknownCompany = "Unknown Company"

const timestampLayout = "2006-01-02 15:04:05"

// Artifacts holds the rendered outputs for one report.
type Artifacts struct {
	Markdown string
	HTML     string
}

// Renderer turns reports into export artifacts using a fixed schema.
type Renderer struct {
	schema *schema.Schema
}

func NewRenderer(s *schema.Schema) *Renderer {
	return &Renderer{schema: s}
}

// Render produces both formats for a report.
func (r *Renderer) Render(report *model.Report) (Artifacts, error) {
	if report == nil {
		return Artifacts{}, eris.New("render: nil report")
	}
	html, err := r.renderHTML(report)
	if err != nil {
		return Artifacts{}, err
	}
	return Artifacts{
		Markdown: r.renderMarkdown(report),
		HTML:     html,
	}, nil
}

// CompanyName returns the display name for a report's company, falling
// back when the document never provided one.
func (r *Renderer) CompanyName(report *model.Report) string {
	name := report.Extraction["company_name"].Value
	if name == "" || name == schema.Sentinel {
		return unknownCompany
	}
	return name
}

// SuggestedBasename builds the artifact filename stem from the report
// timestamp and a slug of the company name, e.g.
// "20260830_143000_acme_robotics".
func (r *Renderer) SuggestedBasename(report *model.Report) string {
	return fmt.Sprintf("%s_%s",
		report.GeneratedAt.Format("20060102_150405"),
		slugify(r.CompanyName(report)))
}

// displayValue substitutes absent values for the quick-facts blocks.
func displayValue(field model.ExtractedField) string {
	if field.Value == "" || field.Value == schema.Sentinel {
		return "Not specified"
	}
	return field.Value
}

func confidence(field model.ExtractedField) string {
	return fmt.Sprintf("%.2f", field.Confidence)
}

func slugify(name string) string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			sb.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}
