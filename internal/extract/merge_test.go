package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

func TestSentinelRecord(t *testing.T) {
	s := schema.Default()
	rec := SentinelRecord(s)

	assert.Len(t, rec, s.Len())
	for name, field := range rec {
		assert.Equal(t, schema.Sentinel, field.Value, name)
		assert.Zero(t, field.Confidence, name)
	}
}

func TestMerge_HighestConfidenceWins(t *testing.T) {
	s := schema.Default()
	a := model.ExtractionRecord{
		"company_name": {Value: "Acme Inc", Confidence: 0.6},
		"market_size":  {Value: "$1B", Confidence: 0.9},
	}
	b := model.ExtractionRecord{
		"company_name": {Value: "Acme Robotics Inc", Confidence: 0.95},
		"market_size":  {Value: "$2B", Confidence: 0.5},
	}

	merged := Merge([]model.ExtractionRecord{a, b}, s)
	assert.Equal(t, "Acme Robotics Inc", merged["company_name"].Value)
	assert.Equal(t, "$1B", merged["market_size"].Value)
}

func TestMerge_SentinelNeverBeatsValue(t *testing.T) {
	s := schema.Default()
	a := model.ExtractionRecord{
		"market_size": {Value: "$500M", Confidence: 0.2},
	}
	b := model.ExtractionRecord{
		"market_size": {Value: schema.Sentinel, Confidence: 0},
	}

	merged := Merge([]model.ExtractionRecord{a, b}, s)
	assert.Equal(t, "$500M", merged["market_size"].Value)

	merged = Merge([]model.ExtractionRecord{b, a}, s)
	assert.Equal(t, "$500M", merged["market_size"].Value)
}

func TestMerge_TieGoesToEarlierChunk(t *testing.T) {
	s := schema.Default()
	a := model.ExtractionRecord{"company_name": {Value: "First", Confidence: 0.8}}
	b := model.ExtractionRecord{"company_name": {Value: "Second", Confidence: 0.8}}

	merged := Merge([]model.ExtractionRecord{a, b}, s)
	assert.Equal(t, "First", merged["company_name"].Value)
}

func TestMerge_MissingFieldsStaySentinel(t *testing.T) {
	s := schema.Default()
	a := model.ExtractionRecord{"company_name": {Value: "Acme", Confidence: 0.9}}

	merged := Merge([]model.ExtractionRecord{a}, s)
	assert.Equal(t, schema.Sentinel, merged["management_team"].Value)
	assert.Len(t, merged, s.Len())
}

func TestMerge_Empty(t *testing.T) {
	s := schema.Default()
	merged := Merge(nil, s)
	assert.Equal(t, SentinelRecord(s), merged)
}
