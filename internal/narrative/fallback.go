package narrative

import (
	"fmt"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/scoring"
)

// Fallback builds a narrative from the score vector alone. It is used when the
// generator is unavailable or its output cannot be parsed, so it must not
// depend on anything but the request.
func Fallback(req Request) domain.Narrative {
	ordered := sortedScores(req.Scores)
	n := domain.Narrative{
		CategoryAnalysis:  make([]domain.CategoryInsight, 0, len(ordered)),
		Interdependencies: make([]string, 0, 3),
	}

	level := scoring.Level(req.Overall)
	n.ExecutiveSummary = fmt.Sprintf(
		"Your overall supply-chain maturity is %.1f out of 5 (%s).",
		scoring.RoundDisplay(req.Overall), level)
	if len(ordered) > 0 {
		weakest, strongest := ordered[0], ordered[len(ordered)-1]
		n.ExecutiveSummary += fmt.Sprintf(
			" %s is the strongest area at %.1f, while %s at %.1f offers the largest improvement potential.",
			title(req.Titles, strongest.key), scoring.RoundDisplay(strongest.score),
			title(req.Titles, weakest.key), scoring.RoundDisplay(weakest.score))
	}

	m := &n.PriorityMatrix
	for _, r := range ordered {
		name := title(req.Titles, r.key)
		insight := domain.CategoryInsight{Category: r.key, Score: r.score}
		switch {
		case r.score <= 2.0:
			insight.RootCause = fmt.Sprintf("%s processes are largely informal and depend on individuals.", name)
			insight.Impact = "High risk of service failures, excess cost and slow reaction to disruptions."
			insight.QuickWins = []string{fmt.Sprintf("Document the current %s process and assign a clear owner", name)}
			m.QuickWins = append(m.QuickWins, fmt.Sprintf("Define basic KPIs and a weekly review for %s", name))
			m.MajorProjects = append(m.MajorProjects, fmt.Sprintf("Build a standardized, system-supported %s process", name))
		case r.score <= 3.0:
			insight.RootCause = fmt.Sprintf("%s practices exist but are applied inconsistently.", name)
			insight.Impact = "Performance varies between teams and sites, limiting predictability."
			insight.QuickWins = []string{fmt.Sprintf("Standardize %s practices across teams", name)}
			m.QuickWins = append(m.QuickWins, fmt.Sprintf("Close the most visible gaps in %s", name))
			m.MajorProjects = append(m.MajorProjects, fmt.Sprintf("Embed %s in a cross-functional planning cadence", name))
		case r.score < 4.0:
			insight.RootCause = fmt.Sprintf("%s is defined and measured, with room for optimization.", name)
			insight.Impact = "Incremental gains in cost and service are available."
			insight.QuickWins = []string{fmt.Sprintf("Use existing %s data to target the largest losses", name)}
			m.FillIns = append(m.FillIns, fmt.Sprintf("Fine-tune %s targets and thresholds", name))
		default:
			insight.RootCause = fmt.Sprintf("%s is a mature capability.", name)
			insight.Impact = "A source of competitive advantage worth protecting."
			insight.QuickWins = []string{fmt.Sprintf("Share %s practices with weaker areas", name)}
			m.Deprioritize = append(m.Deprioritize, fmt.Sprintf("Further large investments in %s", name))
		}
		n.CategoryAnalysis = append(n.CategoryAnalysis, insight)
	}

	if len(m.QuickWins) == 0 {
		m.QuickWins = []string{"Review KPI definitions and reporting cadence across all categories"}
	}
	if len(m.MajorProjects) == 0 {
		m.MajorProjects = []string{"Develop a multi-year supply-chain excellence roadmap"}
	}
	if len(m.FillIns) == 0 {
		m.FillIns = []string{"Refresh process documentation and training material"}
	}
	if len(m.Deprioritize) == 0 {
		m.Deprioritize = []string{"Large technology investments before processes are stable"}
	}

	if len(ordered) >= 2 {
		weakest, second := ordered[0], ordered[1]
		n.Interdependencies = append(n.Interdependencies, fmt.Sprintf(
			"Weaknesses in %s and %s reinforce each other; improving them together yields more than fixing either alone.",
			title(req.Titles, weakest.key), title(req.Titles, second.key)))
	}
	n.Interdependencies = append(n.Interdependencies,
		"Planning quality drives inventory levels and logistics cost.",
		"Reliable data and system integration are prerequisites for advanced planning and automation.")

	n.IndustryContext = industryContext(req)
	return n
}

func industryContext(req Request) string {
	bm := req.Benchmark
	if bm == nil || bm.NoData || bm.SampleSize == 0 {
		if req.Industry != "" {
			return fmt.Sprintf("Companies in %s typically prioritize resilience and cost transparency; compare your weakest categories against peers first.", req.Industry)
		}
		return "Industry benchmarks are not available for this analysis."
	}

	cohort := "all industries"
	if bm.FilterApplied && bm.Industry != "" {
		cohort = bm.Industry
	}
	text := fmt.Sprintf("Compared with %d assessments from %s", bm.SampleSize, cohort)
	if !bm.Sufficient {
		text += " (a preliminary sample)"
	}

	var worst *benchmark.CategoryBenchmark
	for i := range bm.Categories {
		c := &bm.Categories[i]
		if c.Gap == nil || *c.Gap >= 0 {
			continue
		}
		if worst == nil || *c.Gap < *worst.Gap {
			worst = c
		}
	}
	if worst == nil {
		return text + ", you score at or above the peer average in every category."
	}
	return text + fmt.Sprintf(", the largest gap is in %s at %.1f below the peer average of %.1f.",
		title(req.Titles, worst.CategoryKey), scoring.RoundDisplay(-*worst.Gap), scoring.RoundDisplay(worst.Average))
}
