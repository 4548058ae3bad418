package recommend

import (
	"sort"

	"github.com/godilite/maturity-server/internal/domain"
)

const (
	criticalScore      = 2.0
	weakScore          = 3.0
	lowOverallMaturity = 3.0
)

// Build selects and ranks improvement items for a score vector. An empty plan
// is valid: the respondent scored above every threshold.
func Build(scores map[string]float64, overall float64, catalog []domain.ImprovementItem) ([]domain.PlanEntry, error) {
	if len(scores) == 0 {
		return nil, domain.ErrMissingScores
	}

	selected := make(map[string]struct{})
	plan := make([]domain.PlanEntry, 0)

	for _, item := range catalog {
		score, ok := scores[item.CategoryKey]
		if !ok || score > item.ScoreThreshold {
			continue
		}
		if _, dup := selected[item.ID]; dup {
			continue
		}
		selected[item.ID] = struct{}{}
		plan = append(plan, domain.PlanEntry{
			Item:     item,
			Priority: Adjust(item.Priority, score),
		})
	}

	if overall <= lowOverallMaturity {
		for _, item := range catalog {
			if item.Tier != domain.TierStrategic {
				continue
			}
			if _, dup := selected[item.ID]; dup {
				continue
			}
			selected[item.ID] = struct{}{}
			plan = append(plan, domain.PlanEntry{
				Item:     item,
				Priority: domain.PriorityHigh,
			})
		}
	}

	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Priority.Weight() < plan[j].Priority.Weight()
	})

	for i := range plan {
		plan[i].DisplayOrder = i
		plan[i].RankKey = plan[i].Priority.Weight()*100 + i
	}
	return plan, nil
}

// Adjust escalates a catalog priority for weak categories. It never demotes.
func Adjust(p domain.Priority, score float64) domain.Priority {
	switch {
	case score <= criticalScore:
		return domain.PriorityHigh
	case score <= weakScore && p == domain.PriorityLow:
		return domain.PriorityMedium
	default:
		return p
	}
}
