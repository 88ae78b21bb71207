// Package pipeline wires extraction, report compilation, and rendering
// into the end-to-end document analysis flow.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/summary-analyzer/internal/extract"
	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/render"
	"github.com/sells-group/summary-analyzer/internal/report"
	"github.com/sells-group/summary-analyzer/internal/schema"
)

// Extractor produces a raw extraction record from document text.
type Extractor interface {
	Extract(ctx context.Context, text string) (model.ExtractionRecord, error)
}

// Compiler builds report sections from a normalized record.
type Compiler interface {
	Compile(ctx context.Context, rec model.ExtractionRecord, sourceID string) (*model.Report, error)
}

var (
	_ Extractor = (*extract.Extractor)(nil)
	_ Compiler  = (*report.Compiler)(nil)
)

// Pipeline runs the full analysis: extract, normalize, compile, render.
type Pipeline struct {
	extractor Extractor
	compiler  Compiler
	renderer  *render.Renderer
	schema    *schema.Schema
}

func New(extractor Extractor, compiler Compiler, s *schema.Schema) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		compiler:  compiler,
		renderer:  render.NewRenderer(s),
		schema:    s,
	}
}

// Result bundles everything one analysis produced.
type Result struct {
	Analysis  *model.Analysis
	Report    *model.Report
	Artifacts render.Artifacts
	// Basename is the suggested filename stem for stored artifacts.
	Basename string
}

// Extract runs field extraction and normalization over document text.
// The returned record always satisfies the record invariants.
func (p *Pipeline) Extract(ctx context.Context, text string) (model.ExtractionRecord, error) {
	raw, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract")
	}
	return extract.Normalize(raw, p.schema), nil
}

// BuildReport compiles the four report sections from a normalized record.
func (p *Pipeline) BuildReport(ctx context.Context, rec model.ExtractionRecord, sourceID string) (*model.Report, error) {
	rep, err := p.compiler.Compile(ctx, rec, sourceID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: compile report")
	}
	return rep, nil
}

// Render serializes a report into both export formats.
func (p *Pipeline) Render(report *model.Report) (render.Artifacts, error) {
	return p.renderer.Render(report)
}

// Run executes the whole flow for one document. sourceID identifies the
// input for traceability; pass "" to have one generated.
func (p *Pipeline) Run(ctx context.Context, text, sourceID string) (*Result, error) {
	if sourceID == "" {
		sourceID = uuid.NewString()
	}
	start := time.Now()

	rec, err := p.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	rep, err := p.BuildReport(ctx, rec, sourceID)
	if err != nil {
		return nil, err
	}

	artifacts, err := p.renderer.Render(rep)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: render artifacts")
	}

	analysis := &model.Analysis{
		ID:          uuid.NewString(),
		SourceID:    sourceID,
		CompanyName: p.renderer.CompanyName(rep),
		Status:      model.AnalysisStatusComplete,
		Record:      rec,
		Sections:    rep.Sections,
		CreatedAt:   rep.GeneratedAt,
	}

	zap.L().Info("pipeline: analysis complete",
		zap.String("analysis_id", analysis.ID),
		zap.String("source_id", sourceID),
		zap.String("company", analysis.CompanyName),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Analysis:  analysis,
		Report:    rep,
		Artifacts: artifacts,
		Basename:  p.renderer.SuggestedBasename(rep),
	}, nil
}
