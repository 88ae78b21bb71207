// Package store persists completed analyses and their rendered
// artifacts, backed by SQLite for local use or PostgreSQL for shared
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/summary-analyzer/internal/config"
	"github.com/sells-group/summary-analyzer/internal/model"
)

// ListFilter specifies criteria for listing analyses.
type ListFilter struct {
	Status  model.AnalysisStatus `json:"status,omitempty"`
	Company string               `json:"company,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
	Offset  int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for analyses and artifacts.
type Store interface {
	// Analyses
	CreateAnalysis(ctx context.Context, a *model.Analysis) error
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, filter ListFilter) ([]model.Analysis, error)

	// Artifacts
	SaveArtifact(ctx context.Context, art *model.Artifact) error
	GetArtifact(ctx context.Context, analysisID string, format model.ArtifactFormat) (*model.Artifact, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a requested analysis or artifact does
// not exist.
var ErrNotFound = eris.New("store: not found")

// Open creates a Store from configuration and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite", "":
		s, err = NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
