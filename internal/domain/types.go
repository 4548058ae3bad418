package domain

import (
	"strings"
	"time"
)

// MaxScore is the top of the 1..5 answer scale every category score is recorded against.
const (
	MinAnswer = 1
	MaxAnswer = 5
	MaxScore  = 5.0
)

// Question is immutable reference data. Questions are deactivated, never deleted.
type Question struct {
	ID         int64  `yaml:"id" json:"id"`
	CategoryID int64  `yaml:"category_id" json:"categoryId"`
	Prompt     string `yaml:"prompt" json:"prompt"`
	Weight     int    `yaml:"weight" json:"weight"`
	Active     bool   `yaml:"active" json:"active"`
}

type Category struct {
	ID    int64  `yaml:"id" json:"id"`
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
}

type Answer struct {
	ResultID   string
	QuestionID int64
	Value      int
}

type CategoryScore struct {
	ResultID    string
	CategoryKey string
	Score       float64
	MaxScore    float64
}

// RespondentKey is the declared identity of a respondent. A submission whose
// key matches an existing result updates that result instead of creating one.
type RespondentKey struct {
	Email   string
	Company string
}

// NewRespondentKey normalizes email and company so lookups are insensitive to
// case and surrounding whitespace in the email.
func NewRespondentKey(email, company string) RespondentKey {
	return RespondentKey{
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Company: strings.TrimSpace(company),
	}
}

func (k RespondentKey) Valid() bool {
	return k.Email != "" && k.Company != ""
}

type Respondent struct {
	Name        string
	Email       string
	Company     string
	Industry    string
	CompanySize string
}

func (r Respondent) Key() RespondentKey {
	return NewRespondentKey(r.Email, r.Company)
}

type SurveyResult struct {
	ID                   string
	Respondent           Respondent
	OverallScore         float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Narrative            *Narrative
	NarrativeGeneratedAt *time.Time
}

// PopulationScore is one stored category score row annotated with the cohort
// attributes of the result it belongs to.
type PopulationScore struct {
	ResultID    string
	Industry    string
	CompanySize string
	CategoryKey string
	Score       float64
}
