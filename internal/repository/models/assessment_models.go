package models

import (
	"database/sql"
	"time"

	"github.com/godilite/maturity-server/internal/domain"
)

type CategoryRow struct {
	ID    int64  `db:"id"`
	Key   string `db:"category_key"`
	Title string `db:"title"`
}

type QuestionRow struct {
	ID         int64  `db:"id"`
	CategoryID int64  `db:"category_id"`
	Prompt     string `db:"prompt"`
	Weight     int    `db:"weight"`
	Active     bool   `db:"active"`
}

// ImprovementRow stores actions and KPIs as JSON arrays. Position keeps the
// catalog order the recommendation ranking depends on.
type ImprovementRow struct {
	ID             string  `db:"id"`
	CategoryKey    string  `db:"category_key"`
	Priority       string  `db:"priority"`
	ScoreThreshold float64 `db:"score_threshold"`
	Tier           string  `db:"tier"`
	Title          string  `db:"title"`
	Description    string  `db:"description"`
	Actions        string  `db:"actions"`
	KPIs           string  `db:"kpis"`
	Position       int     `db:"position"`
}

type SurveyResultRow struct {
	ID                   string         `db:"id"`
	Name                 string         `db:"name"`
	Email                string         `db:"email"`
	Company              string         `db:"company"`
	Industry             string         `db:"industry"`
	CompanySize          string         `db:"company_size"`
	OverallScore         float64        `db:"overall_score"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
	Narrative            sql.NullString `db:"narrative"`
	NarrativeGeneratedAt sql.NullTime   `db:"narrative_generated_at"`
}

type CategoryScoreRow struct {
	CategoryKey string  `db:"category_key"`
	Score       float64 `db:"score"`
}

type PopulationRow struct {
	ResultID    string  `db:"result_id"`
	Industry    string  `db:"industry"`
	CompanySize string  `db:"company_size"`
	CategoryKey string  `db:"category_key"`
	Score       float64 `db:"score"`
}

type PlanItemRow struct {
	ImprovementRow
	PlanPriority string `db:"plan_priority"`
	DisplayOrder int    `db:"display_order"`
	RankKey      int    `db:"rank_key"`
}

// Submission is everything one questionnaire submission replaces for a
// respondent, written in a single transaction.
type Submission struct {
	NewID      string
	Respondent domain.Respondent
	Answers    map[int64]int
	Scores     map[string]float64
	Overall    float64
	Plan       []domain.PlanEntry
	At         time.Time
}

// SubmissionResult reports the stored identity of a submission.
type SubmissionResult struct {
	ResultID  string
	Created   bool
	CreatedAt time.Time
}
