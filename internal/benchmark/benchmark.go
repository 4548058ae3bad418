package benchmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/godilite/maturity-server/internal/domain"
)

const (
	DefaultMinCohortSupport = 5
	DefaultSufficiencySize  = 10
)

type Config struct {
	// MinCohortSupport is the distinct-result count an industry slice needs
	// before it replaces the full population.
	MinCohortSupport int
	// SufficiencySize is the distinct-result count at which a comparison is
	// no longer preliminary.
	SufficiencySize int
}

type Request struct {
	Target          map[string]float64
	Industry        string
	ExcludeResultID string
	Population      []domain.PopulationScore
}

// CategoryBenchmark compares one category. Percentile, TopPercent and Gap are
// nil when the category has no history.
type CategoryBenchmark struct {
	CategoryKey string   `json:"categoryKey"`
	Score       float64  `json:"score"`
	SampleCount int      `json:"sampleCount"`
	Average     float64  `json:"average"`
	Percentile  *float64 `json:"percentile,omitempty"`
	TopPercent  *float64 `json:"topPercent,omitempty"`
	Gap         *float64 `json:"gap,omitempty"`
}

type Report struct {
	Categories        []CategoryBenchmark `json:"categories"`
	OverallAverage    float64             `json:"overallAverage"`
	OverallPercentile *float64            `json:"overallPercentile,omitempty"`
	SampleSize        int                 `json:"sampleSize"`
	Industry          string              `json:"industry,omitempty"`
	FilterApplied     bool                `json:"filterApplied"`
	Sufficient        bool                `json:"sufficient"`
	NoData            bool                `json:"noData"`
	Message           string              `json:"message,omitempty"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.MinCohortSupport <= 0 {
		cfg.MinCohortSupport = DefaultMinCohortSupport
	}
	if cfg.SufficiencySize <= 0 {
		cfg.SufficiencySize = DefaultSufficiencySize
	}
	return &Engine{cfg: cfg}
}

// Compare benchmarks the target vector against the stored population. An
// empty population produces a NoData report rather than an error.
func (e *Engine) Compare(req Request) Report {
	population := make([]domain.PopulationScore, 0, len(req.Population))
	for _, p := range req.Population {
		if req.ExcludeResultID != "" && p.ResultID == req.ExcludeResultID {
			continue
		}
		population = append(population, p)
	}

	if distinctResults(population) == 0 {
		return Report{
			NoData:  true,
			Message: "No benchmark data is available yet.",
		}
	}

	chosen := population
	industry := strings.TrimSpace(req.Industry)
	filterApplied := false
	if industry != "" {
		filtered := filterIndustry(population, industry)
		if distinctResults(filtered) >= e.cfg.MinCohortSupport {
			chosen = filtered
			filterApplied = true
		}
	}

	byCategory := make(map[string][]float64)
	for _, p := range chosen {
		byCategory[p.CategoryKey] = append(byCategory[p.CategoryKey], p.Score)
	}

	keys := make([]string, 0, len(req.Target))
	for k := range req.Target {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rep := Report{
		Categories:    make([]CategoryBenchmark, 0, len(keys)),
		SampleSize:    distinctResults(chosen),
		FilterApplied: filterApplied,
	}
	if filterApplied {
		rep.Industry = industry
	}

	for _, k := range keys {
		score := req.Target[k]
		cb := CategoryBenchmark{CategoryKey: k, Score: score}
		samples := byCategory[k]
		if len(samples) > 0 {
			cb.SampleCount = len(samples)
			cb.Average = mean(samples)
			pct := Percentile(score, samples)
			top := 100 - pct
			gap := score - cb.Average
			cb.Percentile, cb.TopPercent, cb.Gap = &pct, &top, &gap
		}
		rep.Categories = append(rep.Categories, cb)
	}

	overalls := overallByResult(chosen)
	rep.OverallAverage = mean(overalls)
	if len(req.Target) > 0 && len(overalls) > 0 {
		var sum float64
		for _, v := range req.Target {
			sum += v
		}
		pct := Percentile(sum/float64(len(req.Target)), overalls)
		rep.OverallPercentile = &pct
	}

	rep.Sufficient = rep.SampleSize >= e.cfg.SufficiencySize
	rep.Message = e.message(rep, industry)
	return rep
}

func (e *Engine) message(rep Report, industry string) string {
	var parts []string
	if industry != "" && !rep.FilterApplied {
		parts = append(parts, fmt.Sprintf(
			"Fewer than %d assessments exist for industry %q; compared against all industries.",
			e.cfg.MinCohortSupport, industry))
	}
	if !rep.Sufficient {
		parts = append(parts, fmt.Sprintf(
			"Benchmark is based on %d assessments and is preliminary until %d are available.",
			rep.SampleSize, e.cfg.SufficiencySize))
	}
	return strings.Join(parts, " ")
}

// Percentile returns the share (0..100) of samples strictly below score.
// It never decreases as score increases.
func Percentile(score float64, samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	below := 0
	for _, s := range samples {
		if s < score {
			below++
		}
	}
	return float64(below) / float64(len(samples)) * 100
}

func filterIndustry(population []domain.PopulationScore, industry string) []domain.PopulationScore {
	out := make([]domain.PopulationScore, 0, len(population))
	for _, p := range population {
		if strings.EqualFold(strings.TrimSpace(p.Industry), industry) {
			out = append(out, p)
		}
	}
	return out
}

func distinctResults(population []domain.PopulationScore) int {
	seen := make(map[string]struct{})
	for _, p := range population {
		seen[p.ResultID] = struct{}{}
	}
	return len(seen)
}

func overallByResult(population []domain.PopulationScore) []float64 {
	type acc struct {
		sum float64
		n   int
	}
	var order []string
	sums := make(map[string]acc)
	for _, p := range population {
		a, ok := sums[p.ResultID]
		if !ok {
			order = append(order, p.ResultID)
		}
		a.sum += p.Score
		a.n++
		sums[p.ResultID] = a
	}
	out := make([]float64, 0, len(order))
	for _, id := range order {
		a := sums[id]
		out = append(out, a.sum/float64(a.n))
	}
	return out
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var total float64
	for _, v := range vs {
		total += v
	}
	return total / float64(len(vs))
}
