package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

func sampleReport() *model.Report {
	rec := model.ExtractionRecord{}
	for _, name := range schema.Default().Names() {
		rec[name] = model.ExtractedField{Value: schema.Sentinel, Confidence: 0}
	}
	rec["company_name"] = model.ExtractedField{Value: "Acme Robotics", Confidence: 0.95}
	rec["technology_type"] = model.ExtractedField{Value: "Warehouse robotics", Confidence: 0.9}
	rec["market_size"] = model.ExtractedField{Value: "$4.2B TAM", Confidence: 0.8}
	rec["investment_needed"] = model.ExtractedField{Value: "$5M Series A", Confidence: 0.85}

	return &model.Report{
		Extraction: rec,
		Sections: model.ReportSections{
			NatureAndState:    "Acme builds warehouse robots.\nThe product ships today.",
			MarketNeedAndSize: "The addressable market is $4.2B.",
		},
		GeneratedAt: time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		SourceID:    "doc-1",
	}
}

func TestRender_Markdown(t *testing.T) {
	r := NewRenderer(schema.Default())
	out, err := r.Render(sampleReport())
	require.NoError(t, err)

	md := out.Markdown
	assert.Contains(t, md, "# Investment Analysis Report")
	assert.Contains(t, md, "## Company: Acme Robotics")
	assert.Contains(t, md, "**Generated:** 2026-08-30 14:30:00")
	assert.Contains(t, md, "### Quick Facts")
	assert.Contains(t, md, "- **Technology Type:** Warehouse robotics")
	assert.Contains(t, md, "| Field | Value | Confidence |")
	assert.Contains(t, md, "| Company Name | Acme Robotics | 0.95 |")
	assert.Contains(t, md, "| Market Size | $4.2B TAM | 0.80 |")
}

func TestRender_EmptySectionsKeepHeadings(t *testing.T) {
	r := NewRenderer(schema.Default())
	out, err := r.Render(sampleReport())
	require.NoError(t, err)

	// ROI and management sections are empty but still present.
	assert.Contains(t, out.Markdown, "## Elements of Potential ROI")
	assert.Contains(t, out.Markdown, "## Strength of the Management Team")
	assert.Contains(t, out.HTML, "<h2>Elements of Potential ROI</h2>")
}

func TestRender_HTML(t *testing.T) {
	r := NewRenderer(schema.Default())
	out, err := r.Render(sampleReport())
	require.NoError(t, err)

	html := out.HTML
	assert.Contains(t, html, "<title>Company Analysis Report - Acme Robotics</title>")
	assert.Contains(t, html, "Generated: 2026-08-30 14:30:00")
	assert.Contains(t, html, "Acme builds warehouse robots.<br>The product ships today.")
	assert.Contains(t, html, "<td>Acme Robotics</td>")
	assert.Contains(t, html, `<td class="confidence">0.95</td>`)
}

func TestRender_FormatsCarrySameData(t *testing.T) {
	r := NewRenderer(schema.Default())
	report := sampleReport()
	out, err := r.Render(report)
	require.NoError(t, err)

	s := schema.Default()
	for _, name := range s.Names() {
		field := report.Extraction[name]
		row := fmt.Sprintf("| %s | %s | %.2f |", s.Label(name), escapeCell(field.Value), field.Confidence)
		assert.Contains(t, out.Markdown, row, name)
		assert.Contains(t, out.HTML, fmt.Sprintf("<td>%s</td>", s.Label(name)), name)
		assert.Contains(t, out.HTML, fmt.Sprintf(`<td class="confidence">%.2f</td>`, field.Confidence), name)
	}
}

func TestRender_Idempotent(t *testing.T) {
	r := NewRenderer(schema.Default())
	report := sampleReport()

	first, err := r.Render(report)
	require.NoError(t, err)
	second, err := r.Render(report)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_UnknownCompanyFallback(t *testing.T) {
	r := NewRenderer(schema.Default())
	report := sampleReport()
	report.Extraction["company_name"] = model.ExtractedField{Value: schema.Sentinel, Confidence: 0}

	out, err := r.Render(report)
	require.NoError(t, err)
	assert.Contains(t, out.Markdown, "## Company: Unknown Company")
	assert.Contains(t, out.HTML, "<h3>Unknown Company</h3>")
}

func TestRender_EscapesTableBreakingValues(t *testing.T) {
	r := NewRenderer(schema.Default())
	report := sampleReport()
	report.Extraction["market_size"] = model.ExtractedField{Value: "$1B | growing\nfast", Confidence: 0.5}

	out, err := r.Render(report)
	require.NoError(t, err)
	assert.Contains(t, out.Markdown, `$1B \| growing fast`)
}

func TestRender_HTMLEscapesSectionProse(t *testing.T) {
	r := NewRenderer(schema.Default())
	report := sampleReport()
	report.Sections.NatureAndState = "Uses <script>alert(1)</script> tech"

	out, err := r.Render(report)
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<script>alert(1)</script>")
	assert.Contains(t, out.HTML, "&lt;script&gt;")
}

func TestSuggestedBasename(t *testing.T) {
	r := NewRenderer(schema.Default())
	report := sampleReport()
	assert.Equal(t, "20260830_143000_acme_robotics", r.SuggestedBasename(report))

	report.Extraction["company_name"] = model.ExtractedField{Value: schema.Sentinel}
	assert.Equal(t, "20260830_143000_unknown_company", r.SuggestedBasename(report))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme_robotics_inc", slugify("Acme Robotics, Inc."))
	assert.Equal(t, "a_b", slugify("  A -- B  "))
	assert.Equal(t, "", slugify("!!!"))
}

func TestRender_NilReport(t *testing.T) {
	r := NewRenderer(schema.Default())
	_, err := r.Render(nil)
	assert.Error(t, err)
}

func TestRender_NoSentinelLeaksIntoQuickFacts(t *testing.T) {
	r := NewRenderer(schema.Default())
	out, err := r.Render(sampleReport())
	require.NoError(t, err)

	quick := out.Markdown[:strings.Index(out.Markdown, "---")]
	assert.NotContains(t, quick, schema.Sentinel)
	assert.Contains(t, quick, "Not specified")
}
