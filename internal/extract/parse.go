package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
	"github.com/sells-group/summary-analyzer/pkg/anthropic"
)

// maxFlattenDepth bounds recursion when a model nests value objects
// inside value objects.
const maxFlattenDepth = 4

// parseRecord decodes a generation response into an extraction record.
// It fails only when the payload is not a JSON object at all; individual
// fields that deviate from the wire contract are coerced defensively,
// with confidence zeroed where the score cannot be read.
func parseRecord(text string, s *schema.Schema) (model.ExtractionRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(anthropic.CleanJSON(text)), &raw); err != nil {
		return nil, eris.Wrap(err, "extract: parse generation response")
	}

	rec := make(model.ExtractionRecord, len(raw))
	for name, payload := range raw {
		if !s.Has(name) {
			continue
		}
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			rec[name] = model.ExtractedField{Value: schema.Sentinel, Confidence: 0}
			continue
		}
		rec[name] = fieldFromRaw(v)
	}
	return rec, nil
}

// fieldFromRaw coerces one decoded field entry into an ExtractedField.
// Accepts the {"value","confidence_score"} contract, the older
// "confidence" key, bare scalars, and nested value objects.
func fieldFromRaw(v any) model.ExtractedField {
	switch entry := v.(type) {
	case map[string]any:
		value, ok := flattenValue(entry["value"], maxFlattenDepth)
		if !ok {
			value = schema.Sentinel
		}
		conf, ok := toFloat64(entry["confidence_score"])
		if !ok {
			conf, ok = toFloat64(entry["confidence"])
		}
		if !ok {
			conf = 0
		}
		return coerceField(value, conf)
	default:
		value, ok := flattenValue(v, maxFlattenDepth)
		if !ok {
			return model.ExtractedField{Value: schema.Sentinel, Confidence: 0}
		}
		// A bare scalar carries no score; keep the text but treat it as
		// unscored.
		return coerceField(value, 0)
	}
}

func coerceField(value string, conf float64) model.ExtractedField {
	value = strings.TrimSpace(value)
	if value == "" || isSentinelValue(value) {
		return model.ExtractedField{Value: schema.Sentinel, Confidence: 0}
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return model.ExtractedField{Value: value, Confidence: conf}
}

func isSentinelValue(value string) bool {
	lower := strings.ToLower(value)
	return strings.Contains(lower, "not provided in the document") ||
		strings.Contains(lower, "not specified in the document") ||
		lower == "n/a" || lower == "unknown" || lower == "none"
}

// flattenValue reduces an arbitrary decoded JSON value to a plain string.
// Nested objects are unwrapped through their "value" key up to depth
// levels deep.
func flattenValue(v any, depth int) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case map[string]any:
		if depth <= 0 {
			return "", false
		}
		inner, ok := val["value"]
		if !ok {
			return "", false
		}
		return flattenValue(inner, depth-1)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := flattenValue(item, depth-1)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, "; "), true
	default:
		return "", false
	}
}

// toFloat64 coerces a decoded JSON value to a float64. Numeric strings
// are parsed; anything else fails.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
