package narrative

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
)

const systemPrompt = `You are a senior supply-chain consultant. You analyse maturity assessment
scores on a 1 (initial) to 5 (optimized) scale and write concise, practical advice.
Respond with valid JSON only, no markdown, matching exactly this shape:
{
  "executiveSummary": "<3-5 sentences>",
  "categoryAnalysis": [{"category": "<key>", "score": <number>, "rootCause": "<text>", "impact": "<text>", "quickWins": ["<text>"]}],
  "priorityMatrix": {"quickWins": ["<text>"], "majorProjects": ["<text>"], "fillIns": ["<text>"], "deprioritize": ["<text>"]},
  "interdependencies": ["<text>"],
  "industryContext": "<text>"
}`

type ranked struct {
	key   string
	score float64
}

// sortedScores orders categories by ascending score, ties by key.
func sortedScores(scores map[string]float64) []ranked {
	out := make([]ranked, 0, len(scores))
	for k, v := range scores {
		out = append(out, ranked{key: k, score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return out[i].key < out[j].key
	})
	return out
}

// StdDev is the population standard deviation across category scores.
func StdDev(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	m := sum / float64(len(scores))
	var sq float64
	for _, v := range scores {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(scores)))
}

func title(titles map[string]string, key string) string {
	if t, ok := titles[key]; ok && t != "" {
		return t
	}
	return key
}

// BuildPrompt renders the generation request deterministically from the
// request's score vector and optional benchmark.
func BuildPrompt(req Request) []Message {
	ordered := sortedScores(req.Scores)

	var b strings.Builder
	fmt.Fprintf(&b, "Overall maturity score: %.2f / 5\n", req.Overall)
	if req.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", req.Industry)
	}
	if req.CompanySize != "" {
		fmt.Fprintf(&b, "Company size: %s\n", req.CompanySize)
	}
	b.WriteString("\nCategory scores (weakest first):\n")
	for _, r := range ordered {
		fmt.Fprintf(&b, "- %s (%s): %.2f\n", title(req.Titles, r.key), r.key, r.score)
	}
	if len(ordered) > 0 {
		weakest, strongest := ordered[0], ordered[len(ordered)-1]
		fmt.Fprintf(&b, "\nWeakest category: %s (%.2f)\n", title(req.Titles, weakest.key), weakest.score)
		fmt.Fprintf(&b, "Strongest category: %s (%.2f)\n", title(req.Titles, strongest.key), strongest.score)
	}
	fmt.Fprintf(&b, "Standard deviation across categories: %.2f\n", StdDev(req.Scores))

	if req.Benchmark != nil && !req.Benchmark.NoData {
		writeBenchmark(&b, req.Benchmark)
	}
	b.WriteString("\nExplain root causes, business impact and quick wins per category, place recommendations in the impact/effort matrix, and describe how weaknesses in one category affect the others.")

	return []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: b.String()},
	}
}

func writeBenchmark(b *strings.Builder, rep *benchmark.Report) {
	cohort := "all industries"
	if rep.FilterApplied {
		cohort = rep.Industry
	}
	fmt.Fprintf(b, "\nBenchmark against %s (%d assessments", cohort, rep.SampleSize)
	if !rep.Sufficient {
		b.WriteString(", preliminary")
	}
	b.WriteString("):\n")
	for _, c := range rep.Categories {
		if c.Gap == nil {
			continue
		}
		fmt.Fprintf(b, "- %s: average %.2f, delta %+.2f, percentile %.0f\n", c.CategoryKey, c.Average, *c.Gap, *c.Percentile)
	}
}

// Parse decodes a generator response into a Narrative. Markdown code fences
// around the JSON are tolerated.
func Parse(raw string) (domain.Narrative, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned[3:], "\n"); idx >= 0 {
			cleaned = cleaned[3+idx+1:]
		}
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cleaned), "```"))
	}
	if cleaned == "" {
		return domain.Narrative{}, fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}

	var n domain.Narrative
	if err := json.Unmarshal([]byte(cleaned), &n); err != nil {
		return domain.Narrative{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if strings.TrimSpace(n.ExecutiveSummary) == "" {
		return domain.Narrative{}, fmt.Errorf("%w: executiveSummary missing", domain.ErrMalformedResponse)
	}
	return n, nil
}
