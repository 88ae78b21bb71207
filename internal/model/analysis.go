package model

import (
	"time"
)

// ExtractedField is one extracted fact together with the pipeline's
// self-reported confidence that the value is correct and present.
type ExtractedField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ExtractionRecord maps a schema field name to its extracted field.
// A valid record covers every schema field exactly once.
type ExtractionRecord map[string]ExtractedField

// Clone returns a copy of the record that can be mutated independently.
func (r ExtractionRecord) Clone() ExtractionRecord {
	out := make(ExtractionRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ReportSections holds the four narrative sections of the final report.
// Sections are plain strings; an empty string means no supporting data.
type ReportSections struct {
	NatureAndState         string `json:"nature_and_state"`
	MarketNeedAndSize      string `json:"market_need_and_size"`
	ROIElements            string `json:"roi_elements"`
	ManagementTeamStrength string `json:"management_team_strength"`
}

// Report is the combined output of one analysis: the validated extraction
// record plus the compiled narrative sections. Immutable once built.
type Report struct {
	Extraction  ExtractionRecord `json:"extraction"`
	Sections    ReportSections   `json:"sections"`
	GeneratedAt time.Time        `json:"generated_at"`
	SourceID    string           `json:"source_id"`
}

// AnalysisStatus represents the final state of an analysis.
type AnalysisStatus string

const (
	AnalysisStatusComplete AnalysisStatus = "complete"
	AnalysisStatusFailed   AnalysisStatus = "failed"
)

// Analysis is a persisted record of one pipeline run.
type Analysis struct {
	ID          string           `json:"id"`
	SourceID    string           `json:"source_id"`
	CompanyName string           `json:"company_name"`
	Status      AnalysisStatus   `json:"status"`
	Record      ExtractionRecord `json:"record"`
	Sections    ReportSections   `json:"sections"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ArtifactFormat identifies a rendered export format.
type ArtifactFormat string

const (
	ArtifactMarkdown ArtifactFormat = "markdown"
	ArtifactHTML     ArtifactFormat = "html"
)

// Artifact is a rendered report handed to the artifact store.
type Artifact struct {
	ID         string         `json:"id"`
	AnalysisID string         `json:"analysis_id"`
	Format     ArtifactFormat `json:"format"`
	Filename   string         `json:"filename"`
	Content    string         `json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
}
