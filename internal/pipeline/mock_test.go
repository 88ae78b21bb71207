package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/summary-analyzer/internal/extract"
	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, text string) (model.ExtractionRecord, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.ExtractionRecord), args.Error(1)
}

type mockCompiler struct {
	mock.Mock
}

func (m *mockCompiler) Compile(ctx context.Context, rec model.ExtractionRecord, sourceID string) (*model.Report, error) {
	args := m.Called(ctx, rec, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

var (
	_ Extractor = (*mockExtractor)(nil)
	_ Compiler  = (*mockCompiler)(nil)
)

// reportWith builds a report whose extraction is a sentinel record
// overlaid with the given fields.
func reportWith(s *schema.Schema, sections model.ReportSections, fields map[string]model.ExtractedField) *model.Report {
	rec := extract.SentinelRecord(s)
	for name, field := range fields {
		rec[name] = field
	}
	return &model.Report{
		Extraction:  rec,
		Sections:    sections,
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}
