package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/godilite/maturity-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Categories, 6)
	assert.NotEmpty(t, c.Improvements)
	assert.Less(t, len(c.ActiveQuestions()), len(c.Questions))
	assert.Equal(t, "Inventory Management", c.Titles()["inventory"])

	var strategic int
	for _, it := range c.Improvements {
		if it.Tier == domain.TierStrategic {
			strategic++
		}
	}
	assert.Positive(t, strategic)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - {id: 1, key: planning, title: Planning}
questions:
  - {id: 1, category_id: 1, weight: 2, active: true, prompt: "Q?"}
improvements:
  - {id: a, category: planning, priority: low, score_threshold: 3, tier: strategic, title: A}
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, c.Improvements[0].Priority)
	assert.Equal(t, 3.0, c.Improvements[0].ScoreThreshold)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		msg  string
	}{
		{
			name: "unknown question category",
			yaml: "categories: [{id: 1, key: planning}]\nquestions: [{id: 1, category_id: 2, weight: 1}]",
			msg:  "unknown category 2",
		},
		{
			name: "zero weight",
			yaml: "categories: [{id: 1, key: planning}]\nquestions: [{id: 1, category_id: 1, weight: 0}]",
			msg:  "weight must be >= 1",
		},
		{
			name: "duplicate category key",
			yaml: "categories: [{id: 1, key: planning}, {id: 2, key: planning}]",
			msg:  "duplicate category key",
		},
		{
			name: "bad priority",
			yaml: "categories: [{id: 1, key: planning}]\nimprovements: [{id: a, category: planning, priority: urgent}]",
			msg:  "unknown priority",
		},
		{
			name: "improvement with unknown category",
			yaml: "categories: [{id: 1, key: planning}]\nimprovements: [{id: a, category: hr, priority: low}]",
			msg:  "unknown category \"hr\"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
