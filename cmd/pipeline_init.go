package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/summary-analyzer/internal/config"
	"github.com/sells-group/summary-analyzer/internal/extract"
	"github.com/sells-group/summary-analyzer/internal/pipeline"
	"github.com/sells-group/summary-analyzer/internal/report"
	"github.com/sells-group/summary-analyzer/internal/schema"
	"github.com/sells-group/summary-analyzer/internal/store"
	anthropicpkg "github.com/sells-group/summary-analyzer/pkg/anthropic"
)

// pipelineEnv holds the initialized store, schema, and pipeline needed
// by the analyze and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Schema   *schema.Schema
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, the field schema, the Anthropic
// client, and the analysis pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("SUMMARY_ANTHROPIC_KEY is required")
	}

	s, err := loadSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key,
		anthropicpkg.WithRequestsPerSecond(cfg.Anthropic.RequestsPerSecond))

	extractor := extract.NewExtractor(client, s, cfg.Anthropic, cfg.Extract)
	compiler := report.NewCompiler(client, s, cfg.Anthropic, cfg.Report)

	return &pipelineEnv{
		Store:    st,
		Schema:   s,
		Pipeline: pipeline.New(extractor, compiler, s),
	}, nil
}

func loadSchema(cfg config.SchemaConfig) (*schema.Schema, error) {
	if cfg.OverridesPath == "" {
		return schema.Default(), nil
	}
	s, err := schema.LoadOverrides(cfg.OverridesPath)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded prompt hint overrides", zap.String("path", cfg.OverridesPath))
	return s, nil
}
