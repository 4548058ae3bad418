// Package v1 holds the wire messages and service descriptor of the
// maturity.v1.Assessment gRPC service. Messages travel with the "json"
// codec registered in codec.go.
package v1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Respondent struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Industry    string `json:"industry,omitempty"`
	CompanySize string `json:"companySize,omitempty"`
}

func (x *Respondent) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *Respondent) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

func (x *Respondent) GetCompany() string {
	if x != nil {
		return x.Company
	}
	return ""
}

func (x *Respondent) GetIndustry() string {
	if x != nil {
		return x.Industry
	}
	return ""
}

func (x *Respondent) GetCompanySize() string {
	if x != nil {
		return x.CompanySize
	}
	return ""
}

type Answer struct {
	QuestionId int64 `json:"questionId"`
	Value      int32 `json:"value"`
}

type SubmitAssessmentRequest struct {
	Respondent *Respondent `json:"respondent"`
	Answers    []*Answer   `json:"answers"`
}

func (x *SubmitAssessmentRequest) GetRespondent() *Respondent {
	if x != nil {
		return x.Respondent
	}
	return nil
}

func (x *SubmitAssessmentRequest) GetAnswers() []*Answer {
	if x != nil {
		return x.Answers
	}
	return nil
}

type ResultRequest struct {
	ResultId string `json:"resultId"`
}

func (x *ResultRequest) GetResultId() string {
	if x != nil {
		return x.ResultId
	}
	return ""
}

type CategoryScore struct {
	Key          string  `json:"key"`
	Title        string  `json:"title"`
	Score        float64 `json:"score"`
	DisplayScore float64 `json:"displayScore"`
	Level        string  `json:"level"`
}

type PlanItem struct {
	Id           string   `json:"id"`
	Category     string   `json:"category"`
	Priority     string   `json:"priority"`
	Tier         string   `json:"tier"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Actions      []string `json:"actions,omitempty"`
	Kpis         []string `json:"kpis,omitempty"`
	DisplayOrder int32    `json:"displayOrder"`
	RankKey      int32    `json:"rankKey"`
}

type AssessmentResponse struct {
	ResultId       string                 `json:"resultId"`
	Created        bool                   `json:"created"`
	Respondent     *Respondent            `json:"respondent"`
	Categories     []*CategoryScore       `json:"categories"`
	OverallScore   float64                `json:"overallScore"`
	OverallDisplay float64                `json:"overallDisplay"`
	Level          string                 `json:"level"`
	Plan           []*PlanItem            `json:"plan"`
	CreatedAt      *timestamppb.Timestamp `json:"createdAt,omitempty"`
	UpdatedAt      *timestamppb.Timestamp `json:"updatedAt,omitempty"`
}

type CategoryBenchmark struct {
	Key         string   `json:"key"`
	Score       float64  `json:"score"`
	SampleCount int32    `json:"sampleCount"`
	Average     float64  `json:"average"`
	Percentile  *float64 `json:"percentile,omitempty"`
	TopPercent  *float64 `json:"topPercent,omitempty"`
	Gap         *float64 `json:"gap,omitempty"`
}

type BenchmarkResponse struct {
	ResultId          string               `json:"resultId"`
	Categories        []*CategoryBenchmark `json:"categories"`
	OverallAverage    float64              `json:"overallAverage"`
	OverallPercentile *float64             `json:"overallPercentile,omitempty"`
	SampleSize        int32                `json:"sampleSize"`
	Industry          string               `json:"industry,omitempty"`
	FilterApplied     bool                 `json:"filterApplied"`
	Sufficient        bool                 `json:"sufficient"`
	NoData            bool                 `json:"noData"`
	Message           string               `json:"message,omitempty"`
}

type RecommendationsResponse struct {
	ResultId string      `json:"resultId"`
	Items    []*PlanItem `json:"items"`
}

type CategoryInsight struct {
	Category  string   `json:"category"`
	Score     float64  `json:"score"`
	RootCause string   `json:"rootCause"`
	Impact    string   `json:"impact"`
	QuickWins []string `json:"quickWins"`
}

type PriorityMatrix struct {
	QuickWins     []string `json:"quickWins"`
	MajorProjects []string `json:"majorProjects"`
	FillIns       []string `json:"fillIns"`
	Deprioritize  []string `json:"deprioritize"`
}

type Narrative struct {
	ExecutiveSummary  string             `json:"executiveSummary"`
	CategoryAnalysis  []*CategoryInsight `json:"categoryAnalysis"`
	PriorityMatrix    *PriorityMatrix    `json:"priorityMatrix"`
	Interdependencies []string           `json:"interdependencies"`
	IndustryContext   string             `json:"industryContext"`
}

type NarrativeResponse struct {
	ResultId    string                 `json:"resultId"`
	Narrative   *Narrative             `json:"narrative"`
	Source      string                 `json:"source"`
	Cached      bool                   `json:"cached"`
	IsFallback  bool                   `json:"isFallback"`
	GeneratedAt *timestamppb.Timestamp `json:"generatedAt,omitempty"`
}

type InvalidateNarrativeResponse struct {
	ResultId    string `json:"resultId"`
	Invalidated bool   `json:"invalidated"`
}

type ListCategoriesRequest struct{}

type Question struct {
	Id     int64  `json:"id"`
	Prompt string `json:"prompt"`
	Weight int32  `json:"weight"`
}

type Category struct {
	Id        int64       `json:"id"`
	Key       string      `json:"key"`
	Title     string      `json:"title"`
	Questions []*Question `json:"questions"`
}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}
