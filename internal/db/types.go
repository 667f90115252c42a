package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents an analysis run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   string     `json:"session_id"`
	Input       string     `json:"input"`
	Skills      string     `json:"skills"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact steps, one per pipeline stage. Narrative stages also store the raw
// model answer under the same step as a text artifact.
const (
	StepJobCategories    = "job_categories"
	StepMood             = "mood"
	StepJobAlignment     = "job_alignment"
	StepCareerPath       = "career_path"
	StepSkillPlan        = "skill_plan"
	StepIndustryForecast = "industry_forecast"
)

// Artifact categories
const (
	CategoryStructured = "structured"
	CategoryNarrative  = "narrative"
)

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	SessionID string
	Status    string
	Limit     int
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Step      string    `json:"step"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	HasJSON   bool      `json:"has_json"`
	HasText   bool      `json:"has_text"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	session_id   TEXT NOT NULL DEFAULT '',
	input        TEXT NOT NULL,
	skills       TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_session ON analysis_runs (session_id, created_at DESC);

CREATE TABLE IF NOT EXISTS run_artifacts (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	run_id       UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	step         TEXT NOT NULL,
	category     TEXT,
	content      JSONB,
	text_content TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, step)
);
`
