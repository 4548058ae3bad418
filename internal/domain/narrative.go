package domain

// Narrative is the structured analysis attached to a survey result. The JSON
// shape doubles as the contract the text generator is asked to produce.
type Narrative struct {
	ExecutiveSummary  string            `json:"executiveSummary"`
	CategoryAnalysis  []CategoryInsight `json:"categoryAnalysis"`
	PriorityMatrix    PriorityMatrix    `json:"priorityMatrix"`
	Interdependencies []string          `json:"interdependencies"`
	IndustryContext   string            `json:"industryContext"`
}

type CategoryInsight struct {
	Category  string   `json:"category"`
	Score     float64  `json:"score"`
	RootCause string   `json:"rootCause"`
	Impact    string   `json:"impact"`
	QuickWins []string `json:"quickWins"`
}

// PriorityMatrix buckets recommendations by impact and effort.
type PriorityMatrix struct {
	QuickWins     []string `json:"quickWins"`     // high impact, low effort
	MajorProjects []string `json:"majorProjects"` // high impact, high effort
	FillIns       []string `json:"fillIns"`       // low impact, low effort
	Deprioritize  []string `json:"deprioritize"`  // low impact, high effort
}
