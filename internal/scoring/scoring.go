package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/godilite/maturity-server/internal/domain"
)

// Result holds the derived scores of one submission. Categories without any
// weight mass are absent from Categories and do not contribute to Overall.
type Result struct {
	Categories map[string]float64
	Overall    float64
}

// Keys returns the scored category keys in ascending order.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r.Categories))
	for k := range r.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rows flattens the result into storable category score rows.
func (r Result) Rows(resultID string) []domain.CategoryScore {
	rows := make([]domain.CategoryScore, 0, len(r.Categories))
	for _, k := range r.Keys() {
		rows = append(rows, domain.CategoryScore{
			ResultID:    resultID,
			CategoryKey: k,
			Score:       r.Categories[k],
			MaxScore:    domain.MaxScore,
		})
	}
	return rows
}

// Score converts raw answers (question ID -> 1..5) into weighted per-category
// averages and their unweighted overall mean.
func Score(answers map[int64]int, questions []domain.Question, categories []domain.Category) (Result, error) {
	active := make(map[int64]domain.Question, len(questions))
	for _, q := range questions {
		if q.Active {
			active[q.ID] = q
		}
	}
	if len(active) == 0 {
		return Result{}, domain.ErrMissingCatalog
	}

	for qid, v := range answers {
		if v < domain.MinAnswer || v > domain.MaxAnswer {
			return Result{}, fmt.Errorf("%w: question %d has value %d, want %d..%d",
				domain.ErrInvalidAnswerValue, qid, v, domain.MinAnswer, domain.MaxAnswer)
		}
	}

	keyByID := make(map[int64]string, len(categories))
	for _, c := range categories {
		keyByID[c.ID] = c.Key
	}

	type acc struct {
		weighted float64
		weight   float64
	}
	sums := make(map[string]acc)
	for qid, v := range answers {
		q, ok := active[qid]
		if !ok || q.Weight <= 0 {
			continue
		}
		key, ok := keyByID[q.CategoryID]
		if !ok {
			continue
		}
		a := sums[key]
		a.weighted += float64(v) * float64(q.Weight)
		a.weight += float64(q.Weight)
		sums[key] = a
	}

	res := Result{Categories: make(map[string]float64, len(sums))}
	for key, a := range sums {
		if a.weight > 0 {
			res.Categories[key] = a.weighted / a.weight
		}
	}
	res.Overall = Overall(res.Categories)
	return res, nil
}

// Overall is the unweighted mean of the defined category scores, or 0 when
// there are none.
func Overall(categories map[string]float64) float64 {
	if len(categories) == 0 {
		return 0
	}
	var total float64
	for _, v := range categories {
		total += v
	}
	return total / float64(len(categories))
}

// RoundDisplay rounds half up to one decimal. Only presentation code calls it.
func RoundDisplay(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// Level names the maturity stage of a score using its display rounding.
func Level(score float64) string {
	switch s := RoundDisplay(score); {
	case s < 1.5:
		return "Initial"
	case s < 2.5:
		return "Developing"
	case s < 3.5:
		return "Defined"
	case s < 4.5:
		return "Managed"
	default:
		return "Optimized"
	}
}
