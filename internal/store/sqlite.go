package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/summary-analyzer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	source_id  TEXT NOT NULL,
	company    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'complete',
	record     TEXT NOT NULL,
	sections   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS artifacts (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id),
	format      TEXT NOT NULL,
	filename    TEXT NOT NULL,
	content     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_company ON analyses(company);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_artifacts_analysis_format ON artifacts(analysis_id, format);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, a *model.Analysis) error {
	recordJSON, err := json.Marshal(a.Record)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}
	sectionsJSON, err := json.Marshal(a.Sections)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sections")
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, source_id, company, status, record, sections, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SourceID, a.CompanyName, string(a.Status),
		string(recordJSON), string(sectionsJSON), createdAt,
	)
	return eris.Wrapf(err, "sqlite: insert analysis %s", a.ID)
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_id, company, status, record, sections, created_at
		 FROM analyses WHERE id = ?`,
		id,
	)
	return scanAnalysis(row)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter ListFilter) ([]model.Analysis, error) {
	query := `SELECT id, source_id, company, status, record, sections, created_at
	          FROM analyses WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) SaveArtifact(ctx context.Context, art *model.Artifact) error {
	createdAt := art.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, analysis_id, format, filename, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (analysis_id, format) DO UPDATE SET
		   filename = excluded.filename,
		   content = excluded.content,
		   created_at = excluded.created_at`,
		art.ID, art.AnalysisID, string(art.Format), art.Filename, art.Content, createdAt,
	)
	return eris.Wrapf(err, "sqlite: save artifact for analysis %s", art.AnalysisID)
}

func (s *SQLiteStore) GetArtifact(ctx context.Context, analysisID string, format model.ArtifactFormat) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, analysis_id, format, filename, content, created_at
		 FROM artifacts WHERE analysis_id = ? AND format = ?`,
		analysisID, string(format),
	)

	var art model.Artifact
	err := row.Scan(&art.ID, &art.AnalysisID, &art.Format, &art.Filename, &art.Content, &art.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get artifact")
	}
	return &art, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*model.Analysis, error) {
	var a model.Analysis
	var recordJSON, sectionsJSON string

	err := row.Scan(&a.ID, &a.SourceID, &a.CompanyName, &a.Status,
		&recordJSON, &sectionsJSON, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan analysis")
	}

	if err := json.Unmarshal([]byte(recordJSON), &a.Record); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal record")
	}
	if err := json.Unmarshal([]byte(sectionsJSON), &a.Sections); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal sections")
	}
	return &a, nil
}
