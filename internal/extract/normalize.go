package extract

import (
	"math"
	"strings"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

// Normalize returns a copy of rec satisfying the record invariants:
// every schema field is present, confidences are finite and clamped to
// [0,1], sentinel values carry zero confidence, and fields outside the
// schema are dropped. The input is never mutated.
func Normalize(rec model.ExtractionRecord, s *schema.Schema) model.ExtractionRecord {
	out := make(model.ExtractionRecord, s.Len())
	for _, name := range s.Names() {
		field, ok := rec[name]
		if !ok {
			out[name] = model.ExtractedField{Value: schema.Sentinel, Confidence: 0}
			continue
		}
		value := strings.TrimSpace(field.Value)
		if value == "" {
			value = schema.Sentinel
		}
		conf := field.Confidence
		if math.IsNaN(conf) || math.IsInf(conf, 0) || conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		if value == schema.Sentinel {
			conf = 0
		}
		out[name] = model.ExtractedField{Value: value, Confidence: conf}
	}
	return out
}
