package render

import (
	"fmt"
	"strings"

	"github.com/sells-group/summary-analyzer/internal/model"
)

// renderMarkdown writes the Markdown artifact: title and metadata,
// quick facts, the four assessment sections, and the full extraction
// summary table. Empty sections keep their headings so the report shape
// is stable regardless of how much the document provided.
func (r *Renderer) renderMarkdown(report *model.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Investment Analysis Report\n\n")
	fmt.Fprintf(&sb, "## Company: %s\n\n", r.CompanyName(report))
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", report.GeneratedAt.Format(timestampLayout))

	sb.WriteString("### Quick Facts\n")
	for _, name := range r.schema.QuickFacts() {
		fmt.Fprintf(&sb, "- **%s:** %s\n", r.schema.Label(name), displayValue(report.Extraction[name]))
	}
	sb.WriteString("\n---\n\n")

	for _, sec := range r.schema.Sections() {
		fmt.Fprintf(&sb, "## %s\n\n", sec.Label)
		body := sectionBody(report.Sections, sec.Key)
		if body != "" {
			sb.WriteString(body)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("### Extracted Information Summary\n\n")
	sb.WriteString("| Field | Value | Confidence |\n")
	sb.WriteString("|-------|-------|------------|\n")
	for _, name := range r.schema.Names() {
		field := report.Extraction[name]
		fmt.Fprintf(&sb, "| %s | %s | %s |\n",
			r.schema.Label(name), escapeCell(field.Value), confidence(field))
	}

	return sb.String()
}

func sectionBody(sections model.ReportSections, key string) string {
	switch key {
	case "nature_and_state":
		return sections.NatureAndState
	case "market_need_and_size":
		return sections.MarketNeedAndSize
	case "roi_elements":
		return sections.ROIElements
	case "management_team_strength":
		return sections.ManagementTeamStrength
	}
	return ""
}

// escapeCell keeps extracted values from breaking the table layout.
func escapeCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", " ")
}
