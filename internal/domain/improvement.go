package domain

import "fmt"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight orders priorities: high sorts first.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

type Tier string

const (
	TierOperational Tier = "operational"
	TierStrategic   Tier = "strategic"
)

// ImprovementItem is a static catalog entry; the recommendation engine never mutates it.
type ImprovementItem struct {
	ID             string   `yaml:"id" json:"id"`
	CategoryKey    string   `yaml:"category" json:"category"`
	Priority       Priority `yaml:"priority" json:"priority"`
	ScoreThreshold float64  `yaml:"score_threshold" json:"scoreThreshold"`
	Tier           Tier     `yaml:"tier" json:"tier"`
	Title          string   `yaml:"title" json:"title"`
	Description    string   `yaml:"description" json:"description"`
	Actions        []string `yaml:"actions" json:"actions"`
	KPIs           []string `yaml:"kpis" json:"kpis"`
}

type PlanEntry struct {
	Item         ImprovementItem `json:"item"`
	Priority     Priority        `json:"priority"`
	DisplayOrder int             `json:"displayOrder"`
	RankKey      int             `json:"rankKey"`
}
