package scoring

import (
	"testing"

	"github.com/godilite/maturity-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() ([]domain.Question, []domain.Category) {
	categories := []domain.Category{
		{ID: 1, Key: "planning", Title: "Planning"},
		{ID: 2, Key: "procurement", Title: "Procurement"},
		{ID: 3, Key: "logistics", Title: "Logistics"},
	}
	questions := []domain.Question{
		{ID: 10, CategoryID: 1, Weight: 3, Active: true},
		{ID: 11, CategoryID: 1, Weight: 4, Active: true},
		{ID: 20, CategoryID: 2, Weight: 1, Active: true},
		{ID: 21, CategoryID: 2, Weight: 2, Active: false},
		{ID: 30, CategoryID: 3, Weight: 2, Active: true},
		{ID: 99, CategoryID: 42, Weight: 5, Active: true},
	}
	return questions, categories
}

func TestScore(t *testing.T) {
	questions, categories := testCatalog()

	t.Run("weighted mean per category", func(t *testing.T) {
		res, err := Score(map[int64]int{10: 4, 11: 5}, questions, categories)
		require.NoError(t, err)

		assert.InDelta(t, 32.0/7.0, res.Categories["planning"], 1e-9)
		assert.Len(t, res.Categories, 1)
		assert.InDelta(t, 32.0/7.0, res.Overall, 1e-9)
	})

	t.Run("categories without answers are excluded from overall", func(t *testing.T) {
		res, err := Score(map[int64]int{10: 5, 11: 5, 20: 4}, questions, categories)
		require.NoError(t, err)

		assert.NotContains(t, res.Categories, "logistics")
		assert.InDelta(t, 4.5, res.Overall, 1e-9)
	})

	t.Run("inactive, unknown and orphaned questions are ignored", func(t *testing.T) {
		res, err := Score(map[int64]int{20: 2, 21: 5, 77: 5, 99: 1}, questions, categories)
		require.NoError(t, err)

		assert.Equal(t, map[string]float64{"procurement": 2}, res.Categories)
		assert.InDelta(t, 2.0, res.Overall, 1e-9)
	})

	t.Run("no answers yields empty result", func(t *testing.T) {
		res, err := Score(nil, questions, categories)
		require.NoError(t, err)

		assert.Empty(t, res.Categories)
		assert.Equal(t, 0.0, res.Overall)
	})

	t.Run("out of range answer rejected", func(t *testing.T) {
		for _, v := range []int{0, 6, -1} {
			_, err := Score(map[int64]int{10: v}, questions, categories)
			assert.ErrorIs(t, err, domain.ErrInvalidAnswerValue)
		}
	})

	t.Run("out of range answer rejected even for unknown question", func(t *testing.T) {
		_, err := Score(map[int64]int{77: 9}, questions, categories)
		assert.ErrorIs(t, err, domain.ErrInvalidAnswerValue)
	})

	t.Run("missing catalog", func(t *testing.T) {
		_, err := Score(map[int64]int{10: 3}, nil, categories)
		assert.ErrorIs(t, err, domain.ErrMissingCatalog)

		_, err = Score(map[int64]int{10: 3}, []domain.Question{{ID: 10, CategoryID: 1, Weight: 1}}, categories)
		assert.ErrorIs(t, err, domain.ErrMissingCatalog)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		answers := map[int64]int{10: 2, 11: 3, 20: 5, 30: 1}
		a, err := Score(answers, questions, categories)
		require.NoError(t, err)
		b, err := Score(answers, questions, categories)
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})
}

func TestResultRows(t *testing.T) {
	res := Result{Categories: map[string]float64{"procurement": 2, "planning": 4.5}}

	rows := res.Rows("r-1")

	require.Len(t, rows, 2)
	assert.Equal(t, "planning", rows[0].CategoryKey)
	assert.Equal(t, "procurement", rows[1].CategoryKey)
	for _, r := range rows {
		assert.Equal(t, "r-1", r.ResultID)
		assert.Equal(t, domain.MaxScore, r.MaxScore)
	}
}

func TestRoundDisplay(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{4.571428, 4.6},
		{2.25, 2.3},
		{2.24, 2.2},
		{5, 5},
		{1, 1},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, RoundDisplay(tc.in), 1e-9, "RoundDisplay(%v)", tc.in)
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "Initial", Level(1.2))
	assert.Equal(t, "Developing", Level(1.6))
	assert.Equal(t, "Defined", Level(3.0))
	assert.Equal(t, "Managed", Level(3.46))
	assert.Equal(t, "Optimized", Level(4.5))
}
