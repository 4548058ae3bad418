package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/godilite/maturity-server/internal/app"
	"github.com/godilite/maturity-server/internal/config"
	"github.com/godilite/maturity-server/internal/recommend"
	"github.com/godilite/maturity-server/internal/scoring"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// answerSheet is the offline input for the score command.
type answerSheet struct {
	Answers map[int64]int `yaml:"answers"`
}

type categoryLine struct {
	Key   string  `yaml:"key"`
	Title string  `yaml:"title"`
	Score float64 `yaml:"score"`
	Level string  `yaml:"level"`
}

type planLine struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
	Title    string `yaml:"title"`
}

type scoreReport struct {
	Overall    float64        `yaml:"overall"`
	Level      string         `yaml:"level"`
	Categories []categoryLine `yaml:"categories"`
	Plan       []planLine     `yaml:"plan,omitempty"`
}

func main() {
	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := newRootCmd(cfg, logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "maturityctl",
		Short:        "Operate the supply-chain maturity assessment engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.Engine.CatalogPath, "catalog", cfg.Engine.CatalogPath, "catalog YAML file (built-in catalog when empty)")

	root.AddCommand(newScoreCmd(cfg), newCatalogCmd(cfg), newMigrateCmd(cfg, logger))
	return root
}

func newScoreCmd(cfg *config.Config) *cobra.Command {
	var withPlan bool
	cmd := &cobra.Command{
		Use:   "score <answers.yaml>",
		Short: "Score an answer sheet offline",
		Long: `Score an answer sheet against the catalog without touching storage.

The answer sheet maps question IDs to values between 1 and 5:

  answers:
    101: 4
    102: 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read answer sheet: %w", err)
			}
			var sheet answerSheet
			if err := yaml.Unmarshal(data, &sheet); err != nil {
				return fmt.Errorf("parse answer sheet: %w", err)
			}

			cat, err := app.LoadCatalog(cfg.Engine.CatalogPath)
			if err != nil {
				return err
			}

			res, err := scoring.Score(sheet.Answers, cat.ActiveQuestions(), cat.Categories)
			if err != nil {
				return err
			}

			titles := cat.Titles()
			out := scoreReport{
				Overall: scoring.RoundDisplay(res.Overall),
				Level:   scoring.Level(res.Overall),
			}
			for _, k := range res.Keys() {
				out.Categories = append(out.Categories, categoryLine{
					Key:   k,
					Title: titles[k],
					Score: scoring.RoundDisplay(res.Categories[k]),
					Level: scoring.Level(res.Categories[k]),
				})
			}

			if withPlan {
				plan, err := recommend.Build(res.Categories, res.Overall, cat.Improvements)
				if err != nil {
					return err
				}
				for _, p := range plan {
					out.Plan = append(out.Plan, planLine{
						ID:       p.Item.ID,
						Category: p.Item.CategoryKey,
						Priority: string(p.Priority),
						Title:    p.Item.Title,
					})
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&withPlan, "plan", true, "include the improvement plan")
	return cmd
}

func newCatalogCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Validate the catalog and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := app.LoadCatalog(cfg.Engine.CatalogPath)
			if err != nil {
				return err
			}

			perCategory := make(map[string]int)
			titles := cat.Titles()
			byID := make(map[int64]string, len(cat.Categories))
			for _, c := range cat.Categories {
				byID[c.ID] = c.Key
			}
			for _, q := range cat.ActiveQuestions() {
				perCategory[byID[q.CategoryID]]++
			}
			keys := make([]string, 0, len(titles))
			for k := range titles {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(w, "%-16s %2d questions  %s\n", k, perCategory[k], titles[k])
			}
			fmt.Fprintf(w, "%d improvement items\n", len(cat.Improvements))
			return nil
		},
	}
}

func newMigrateCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, _, err := app.OpenStorage(ctx, cfg, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready on %s\n", cfg.DBPath)
			return db.Close()
		},
	}
	cmd.Flags().StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver (sqlite3 or postgres)")
	cmd.Flags().StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "database path or DSN")
	return cmd
}
