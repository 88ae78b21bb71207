package extract

import (
	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

// SentinelRecord returns a record marking every schema field as absent.
func SentinelRecord(s *schema.Schema) model.ExtractionRecord {
	rec := make(model.ExtractionRecord, s.Len())
	for _, name := range s.Names() {
		rec[name] = model.ExtractedField{Value: schema.Sentinel, Confidence: 0}
	}
	return rec
}

// Merge combines per-chunk records field by field, keeping the highest
// confidence non-sentinel value for each field. Ties go to the earliest
// chunk, so records must be passed in chunk order.
func Merge(records []model.ExtractionRecord, s *schema.Schema) model.ExtractionRecord {
	merged := SentinelRecord(s)
	for _, rec := range records {
		for name, field := range rec {
			if !s.Has(name) || field.Value == schema.Sentinel {
				continue
			}
			best := merged[name]
			if best.Value == schema.Sentinel || field.Confidence > best.Confidence {
				merged[name] = field
			}
		}
	}
	return merged
}
