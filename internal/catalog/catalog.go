package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/godilite/maturity-server/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is the static reference data the engines read: categories, the
// question set and improvement items.
type Catalog struct {
	Categories   []domain.Category        `yaml:"categories"`
	Questions    []domain.Question        `yaml:"questions"`
	Improvements []domain.ImprovementItem `yaml:"improvements"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks referential integrity between questions, categories and
// improvement items.
func (c *Catalog) Validate() error {
	ids := make(map[int64]struct{}, len(c.Categories))
	keys := make(map[string]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Key == "" {
			return fmt.Errorf("category %d has no key", cat.ID)
		}
		if _, dup := keys[cat.Key]; dup {
			return fmt.Errorf("duplicate category key %q", cat.Key)
		}
		ids[cat.ID] = struct{}{}
		keys[cat.Key] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(c.Questions))
	for _, q := range c.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Weight < 1 {
			return fmt.Errorf("question %d: weight must be >= 1", q.ID)
		}
		if _, ok := ids[q.CategoryID]; !ok {
			return fmt.Errorf("question %d: unknown category %d", q.ID, q.CategoryID)
		}
	}

	items := make(map[string]struct{}, len(c.Improvements))
	for _, it := range c.Improvements {
		if _, dup := items[it.ID]; dup {
			return fmt.Errorf("duplicate improvement id %q", it.ID)
		}
		items[it.ID] = struct{}{}
		if _, ok := keys[it.CategoryKey]; !ok {
			return fmt.Errorf("improvement %q: unknown category %q", it.ID, it.CategoryKey)
		}
		if _, err := domain.ParsePriority(string(it.Priority)); err != nil {
			return fmt.Errorf("improvement %q: %w", it.ID, err)
		}
	}
	return nil
}

func (c *Catalog) ActiveQuestions() []domain.Question {
	out := make([]domain.Question, 0, len(c.Questions))
	for _, q := range c.Questions {
		if q.Active {
			out = append(out, q)
		}
	}
	return out
}

// Titles maps category keys to display titles.
func (c *Catalog) Titles() map[string]string {
	out := make(map[string]string, len(c.Categories))
	for _, cat := range c.Categories {
		out[cat.Key] = cat.Title
	}
	return out
}
