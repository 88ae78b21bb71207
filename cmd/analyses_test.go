package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/summary-analyzer/internal/model"
)

func TestFormatAnalysesList(t *testing.T) {
	var sb strings.Builder
	formatAnalysesList(&sb, []model.Analysis{
		{
			ID:          "a1",
			CompanyName: "Acme Robotics",
			Status:      model.AnalysisStatusComplete,
			CreatedAt:   time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		},
	})

	out := sb.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Acme Robotics")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "2026-08-30 14:30")
}

func TestReadDocument_FromFile(t *testing.T) {
	text, sourceID, err := readDocument([]string{"testdata/summary.txt"})
	assert.NoError(t, err)
	assert.Contains(t, text, "Acme")
	assert.Equal(t, "summary.txt", sourceID)
}
