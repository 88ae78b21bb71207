package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/summary-analyzer/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	source_id  TEXT NOT NULL,
	company    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'complete',
	record     JSONB NOT NULL,
	sections   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS artifacts (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id),
	format      TEXT NOT NULL,
	filename    TEXT NOT NULL,
	content     TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_company ON analyses(company);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_artifacts_analysis_format ON artifacts(analysis_id, format);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, a *model.Analysis) error {
	recordJSON, err := json.Marshal(a.Record)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}
	sectionsJSON, err := json.Marshal(a.Sections)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal sections")
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, source_id, company, status, record, sections, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.SourceID, a.CompanyName, string(a.Status),
		string(recordJSON), string(sectionsJSON), createdAt,
	)
	return eris.Wrapf(err, "postgres: insert analysis %s", a.ID)
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_id, company, status, record, sections, created_at
		 FROM analyses WHERE id = $1`,
		id,
	)
	a, err := scanPGAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter ListFilter) ([]model.Analysis, error) {
	query := `SELECT id, source_id, company, status, record, sections, created_at
	          FROM analyses WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Company != "" {
		args = append(args, filter.Company)
		query += ` AND company = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanPGAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) SaveArtifact(ctx context.Context, art *model.Artifact) error {
	createdAt := art.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO artifacts (id, analysis_id, format, filename, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (analysis_id, format) DO UPDATE SET
		   filename = EXCLUDED.filename,
		   content = EXCLUDED.content,
		   created_at = EXCLUDED.created_at`,
		art.ID, art.AnalysisID, string(art.Format), art.Filename, art.Content, createdAt,
	)
	return eris.Wrapf(err, "postgres: save artifact for analysis %s", art.AnalysisID)
}

func (s *PostgresStore) GetArtifact(ctx context.Context, analysisID string, format model.ArtifactFormat) (*model.Artifact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, analysis_id, format, filename, content, created_at
		 FROM artifacts WHERE analysis_id = $1 AND format = $2`,
		analysisID, string(format),
	)

	var art model.Artifact
	err := row.Scan(&art.ID, &art.AnalysisID, &art.Format, &art.Filename, &art.Content, &art.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get artifact")
	}
	return &art, nil
}

func scanPGAnalysis(row pgx.Row) (*model.Analysis, error) {
	var a model.Analysis
	var recordJSON, sectionsJSON []byte

	err := row.Scan(&a.ID, &a.SourceID, &a.CompanyName, &a.Status,
		&recordJSON, &sectionsJSON, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan analysis")
	}

	if err := json.Unmarshal(recordJSON, &a.Record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	if err := json.Unmarshal(sectionsJSON, &a.Sections); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal sections")
	}
	return &a, nil
}
