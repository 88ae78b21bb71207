package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

// templateSections assembles sections deterministically from the record,
// one sentence per populated field. Sections without data stay empty.
func (c *Compiler) templateSections(rec model.ExtractionRecord) model.ReportSections {
	var sections model.ReportSections
	for _, sec := range c.schema.Sections() {
		setSection(&sections, sec.Key, c.templateSection(rec, sec))
	}
	return sections
}

func (c *Compiler) templateSection(rec model.ExtractionRecord, sec schema.SectionSpec) string {
	var sb strings.Builder
	for _, name := range sec.Fields {
		field, ok := rec[name]
		if !ok || field.Value == "" || field.Value == schema.Sentinel {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s: %s.", c.schema.Label(name), strings.TrimSuffix(field.Value, "."))
	}
	return sb.String()
}
