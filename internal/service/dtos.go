package service

import (
	"time"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
)

type SubmitInput struct {
	Respondent domain.Respondent
	Answers    map[int64]int
}

type CategoryResult struct {
	Key   string
	Title string
	Score float64
	Level string
}

// Assessment is one stored survey result with its score vector and plan.
type Assessment struct {
	ResultID   string
	Created    bool
	Respondent domain.Respondent
	Categories []CategoryResult
	Overall    float64
	Level      string
	Plan       []domain.PlanEntry
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Scores returns the raw score vector keyed by category.
func (a Assessment) Scores() map[string]float64 {
	out := make(map[string]float64, len(a.Categories))
	for _, c := range a.Categories {
		out[c.Key] = c.Score
	}
	return out
}

type Report struct {
	Assessment Assessment
	Benchmark  benchmark.Report
	Narrative  narrative.Response
}

type CatalogView struct {
	Categories []domain.Category
	Questions  []domain.Question
}
