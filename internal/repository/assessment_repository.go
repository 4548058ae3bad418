package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/maturity-server/internal/catalog"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/repository/models"
	"github.com/jmoiron/sqlx"
)

type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository wraps an open pool. driver selects the placeholder
// style ("sqlite3" or "postgres").
func NewAssessmentRepository(db *sql.DB, driver string) *AssessmentRepository {
	return &AssessmentRepository{db: sqlx.NewDb(db, driver)}
}

// SeedCatalog upserts categories, questions and improvement items.
func (r *AssessmentRepository) SeedCatalog(ctx context.Context, c *catalog.Catalog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SeedCatalog: %w", err)
	}
	defer tx.Rollback()

	const upsertCategory = `
		INSERT INTO categories (id, category_key, title)
		VALUES (:id, :category_key, :title)
		ON CONFLICT (id) DO UPDATE SET category_key = excluded.category_key, title = excluded.title`
	for _, cat := range c.Categories {
		row := models.CategoryRow{ID: cat.ID, Key: cat.Key, Title: cat.Title}
		if _, err := tx.NamedExecContext(ctx, upsertCategory, row); err != nil {
			return fmt.Errorf("upsert category %q: %w", cat.Key, err)
		}
	}

	const upsertQuestion = `
		INSERT INTO questions (id, category_id, prompt, weight, active)
		VALUES (:id, :category_id, :prompt, :weight, :active)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			prompt = excluded.prompt,
			weight = excluded.weight,
			active = excluded.active`
	for _, q := range c.Questions {
		row := models.QuestionRow{ID: q.ID, CategoryID: q.CategoryID, Prompt: q.Prompt, Weight: q.Weight, Active: q.Active}
		if _, err := tx.NamedExecContext(ctx, upsertQuestion, row); err != nil {
			return fmt.Errorf("upsert question %d: %w", q.ID, err)
		}
	}

	const upsertItem = `
		INSERT INTO improvement_items
			(id, category_key, priority, score_threshold, tier, title, description, actions, kpis, position)
		VALUES
			(:id, :category_key, :priority, :score_threshold, :tier, :title, :description, :actions, :kpis, :position)
		ON CONFLICT (id) DO UPDATE SET
			category_key = excluded.category_key,
			priority = excluded.priority,
			score_threshold = excluded.score_threshold,
			tier = excluded.tier,
			title = excluded.title,
			description = excluded.description,
			actions = excluded.actions,
			kpis = excluded.kpis,
			position = excluded.position`
	for i, it := range c.Improvements {
		row, err := toImprovementRow(it, i)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertItem, row); err != nil {
			return fmt.Errorf("upsert improvement %q: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SeedCatalog: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []models.CategoryRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, category_key, title FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("query ListCategories: %w", err)
	}
	out := make([]domain.Category, len(rows))
	for i, row := range rows {
		out[i] = domain.Category{ID: row.ID, Key: row.Key, Title: row.Title}
	}
	return out, nil
}

func (r *AssessmentRepository) ListActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	const query = `
		SELECT id, category_id, prompt, weight, active
		FROM questions
		WHERE active = ?
		ORDER BY id`
	var rows []models.QuestionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), true); err != nil {
		return nil, fmt.Errorf("query ListActiveQuestions: %w", err)
	}
	out := make([]domain.Question, len(rows))
	for i, row := range rows {
		out[i] = domain.Question{ID: row.ID, CategoryID: row.CategoryID, Prompt: row.Prompt, Weight: row.Weight, Active: row.Active}
	}
	return out, nil
}

func (r *AssessmentRepository) ListImprovementItems(ctx context.Context) ([]domain.ImprovementItem, error) {
	const query = `
		SELECT id, category_key, priority, score_threshold, tier, title, description, actions, kpis, position
		FROM improvement_items
		ORDER BY position, id`
	var rows []models.ImprovementRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query ListImprovementItems: %w", err)
	}
	out := make([]domain.ImprovementItem, 0, len(rows))
	for _, row := range rows {
		it, err := fromImprovementRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// SaveSubmission upserts the survey result by respondent key and replaces its
// answers, category scores and plan wholesale, all in one transaction. A
// stored narrative is cleared because the score vector changed.
func (r *AssessmentRepository) SaveSubmission(ctx context.Context, s models.Submission) (models.SubmissionResult, error) {
	key := s.Respondent.Key()
	if !key.Valid() {
		return models.SubmissionResult{}, domain.ErrInvalidRespondent
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.SubmissionResult{}, fmt.Errorf("begin SaveSubmission: %w", err)
	}
	defer tx.Rollback()

	const upsertResult = `
		INSERT INTO survey_results
			(id, name, email, company, industry, company_size, overall_score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email, company) DO UPDATE SET
			name = excluded.name,
			industry = excluded.industry,
			company_size = excluded.company_size,
			overall_score = excluded.overall_score,
			updated_at = excluded.updated_at,
			narrative = NULL,
			narrative_generated_at = NULL
		RETURNING id`

	var res models.SubmissionResult
	err = tx.QueryRowxContext(ctx, tx.Rebind(upsertResult),
		s.NewID, s.Respondent.Name, key.Email, key.Company,
		s.Respondent.Industry, s.Respondent.CompanySize, s.Overall, s.At, s.At,
	).Scan(&res.ResultID)
	if err != nil {
		return models.SubmissionResult{}, fmt.Errorf("upsert survey result: %w", err)
	}
	res.Created = res.ResultID == s.NewID

	const createdAt = `SELECT created_at FROM survey_results WHERE id = ?`
	if err := tx.GetContext(ctx, &res.CreatedAt, tx.Rebind(createdAt), res.ResultID); err != nil {
		return models.SubmissionResult{}, fmt.Errorf("query created_at: %w", err)
	}

	for _, table := range []string{"answers", "category_scores", "recommended_plan"} {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE result_id = ?"), res.ResultID); err != nil {
			return models.SubmissionResult{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertAnswer := tx.Rebind(`INSERT INTO answers (result_id, question_id, score) VALUES (?, ?, ?)`)
	for qid, v := range s.Answers {
		if _, err := tx.ExecContext(ctx, insertAnswer, res.ResultID, qid, v); err != nil {
			return models.SubmissionResult{}, fmt.Errorf("insert answer %d: %w", qid, err)
		}
	}

	insertScore := tx.Rebind(`INSERT INTO category_scores (result_id, category_key, score, max_score) VALUES (?, ?, ?, ?)`)
	for k, v := range s.Scores {
		if _, err := tx.ExecContext(ctx, insertScore, res.ResultID, k, v, domain.MaxScore); err != nil {
			return models.SubmissionResult{}, fmt.Errorf("insert category score %q: %w", k, err)
		}
	}

	insertPlan := tx.Rebind(`INSERT INTO recommended_plan (result_id, item_id, priority, display_order, rank_key) VALUES (?, ?, ?, ?, ?)`)
	for _, e := range s.Plan {
		if _, err := tx.ExecContext(ctx, insertPlan, res.ResultID, e.Item.ID, string(e.Priority), e.DisplayOrder, e.RankKey); err != nil {
			return models.SubmissionResult{}, fmt.Errorf("insert plan entry %q: %w", e.Item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.SubmissionResult{}, fmt.Errorf("commit SaveSubmission: %w", err)
	}
	return res, nil
}

func (r *AssessmentRepository) GetResult(ctx context.Context, id string) (domain.SurveyResult, error) {
	const query = `
		SELECT id, name, email, company, industry, company_size, overall_score,
		       created_at, updated_at, narrative, narrative_generated_at
		FROM survey_results
		WHERE id = ?`
	var row models.SurveyResultRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SurveyResult{}, fmt.Errorf("survey result %q: %w", id, domain.ErrNotFound)
		}
		return domain.SurveyResult{}, fmt.Errorf("query GetResult: %w", err)
	}

	res := domain.SurveyResult{
		ID: row.ID,
		Respondent: domain.Respondent{
			Name:        row.Name,
			Email:       row.Email,
			Company:     row.Company,
			Industry:    row.Industry,
			CompanySize: row.CompanySize,
		},
		OverallScore: row.OverallScore,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Narrative.Valid && row.NarrativeGeneratedAt.Valid {
		var n domain.Narrative
		if err := json.Unmarshal([]byte(row.Narrative.String), &n); err != nil {
			return domain.SurveyResult{}, fmt.Errorf("decode narrative: %w", err)
		}
		at := row.NarrativeGeneratedAt.Time
		res.Narrative, res.NarrativeGeneratedAt = &n, &at
	}
	return res, nil
}

func (r *AssessmentRepository) GetCategoryScores(ctx context.Context, id string) (map[string]float64, error) {
	const query = `SELECT category_key, score FROM category_scores WHERE result_id = ? ORDER BY category_key`
	var rows []models.CategoryScoreRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("query GetCategoryScores: %w", err)
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.CategoryKey] = row.Score
	}
	return out, nil
}

func (r *AssessmentRepository) GetPlan(ctx context.Context, id string) ([]domain.PlanEntry, error) {
	const query = `
		SELECT i.id, i.category_key, i.priority, i.score_threshold, i.tier, i.title,
		       i.description, i.actions, i.kpis, i.position,
		       p.priority AS plan_priority, p.display_order, p.rank_key
		FROM recommended_plan AS p
		JOIN improvement_items AS i ON i.id = p.item_id
		WHERE p.result_id = ?
		ORDER BY p.rank_key`
	var rows []models.PlanItemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("query GetPlan: %w", err)
	}
	out := make([]domain.PlanEntry, 0, len(rows))
	for _, row := range rows {
		it, err := fromImprovementRow(row.ImprovementRow)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.PlanEntry{
			Item:         it,
			Priority:     domain.Priority(row.PlanPriority),
			DisplayOrder: row.DisplayOrder,
			RankKey:      row.RankKey,
		})
	}
	return out, nil
}

// ListPopulation scans every stored category score with its cohort
// attributes. A non-empty industry restricts the scan to that industry.
func (r *AssessmentRepository) ListPopulation(ctx context.Context, industry string) ([]domain.PopulationScore, error) {
	query := `
		SELECT cs.result_id, r.industry, r.company_size, cs.category_key, cs.score
		FROM category_scores AS cs
		JOIN survey_results AS r ON r.id = cs.result_id`
	var args []any
	if industry != "" {
		query += ` WHERE LOWER(r.industry) = LOWER(?)`
		args = append(args, industry)
	}
	query += ` ORDER BY cs.result_id, cs.category_key`

	var rows []models.PopulationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query ListPopulation: %w", err)
	}
	out := make([]domain.PopulationScore, len(rows))
	for i, row := range rows {
		out[i] = domain.PopulationScore{
			ResultID:    row.ResultID,
			Industry:    row.Industry,
			CompanySize: row.CompanySize,
			CategoryKey: row.CategoryKey,
			Score:       row.Score,
		}
	}
	return out, nil
}

// GetNarrative implements narrative.Store.
func (r *AssessmentRepository) GetNarrative(ctx context.Context, resultID string) (*domain.Narrative, time.Time, bool, error) {
	const query = `SELECT narrative, narrative_generated_at FROM survey_results WHERE id = ?`
	var (
		raw sql.NullString
		at  sql.NullTime
	)
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), resultID).Scan(&raw, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("query GetNarrative: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, time.Time{}, false, nil
	}
	var n domain.Narrative
	if err := json.Unmarshal([]byte(raw.String), &n); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode narrative: %w", err)
	}
	return &n, at.Time, true, nil
}

// SaveNarrative implements narrative.Store.
func (r *AssessmentRepository) SaveNarrative(ctx context.Context, resultID string, n domain.Narrative, generatedAt time.Time) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode narrative: %w", err)
	}
	const query = `UPDATE survey_results SET narrative = ?, narrative_generated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), string(data), generatedAt, resultID)
	if err != nil {
		return fmt.Errorf("update SaveNarrative: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("survey result %q: %w", resultID, domain.ErrNotFound)
	}
	return nil
}

// ClearNarrative implements narrative.Store.
func (r *AssessmentRepository) ClearNarrative(ctx context.Context, resultID string) error {
	const query = `UPDATE survey_results SET narrative = NULL, narrative_generated_at = NULL WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), resultID); err != nil {
		return fmt.Errorf("update ClearNarrative: %w", err)
	}
	return nil
}

func toImprovementRow(it domain.ImprovementItem, position int) (models.ImprovementRow, error) {
	actions, err := json.Marshal(nonNil(it.Actions))
	if err != nil {
		return models.ImprovementRow{}, fmt.Errorf("encode actions %q: %w", it.ID, err)
	}
	kpis, err := json.Marshal(nonNil(it.KPIs))
	if err != nil {
		return models.ImprovementRow{}, fmt.Errorf("encode kpis %q: %w", it.ID, err)
	}
	tier := it.Tier
	if tier == "" {
		tier = domain.TierOperational
	}
	return models.ImprovementRow{
		ID:             it.ID,
		CategoryKey:    it.CategoryKey,
		Priority:       string(it.Priority),
		ScoreThreshold: it.ScoreThreshold,
		Tier:           string(tier),
		Title:          it.Title,
		Description:    it.Description,
		Actions:        string(actions),
		KPIs:           string(kpis),
		Position:       position,
	}, nil
}

func fromImprovementRow(row models.ImprovementRow) (domain.ImprovementItem, error) {
	it := domain.ImprovementItem{
		ID:             row.ID,
		CategoryKey:    row.CategoryKey,
		Priority:       domain.Priority(row.Priority),
		ScoreThreshold: row.ScoreThreshold,
		Tier:           domain.Tier(row.Tier),
		Title:          row.Title,
		Description:    row.Description,
	}
	if err := json.Unmarshal([]byte(row.Actions), &it.Actions); err != nil {
		return domain.ImprovementItem{}, fmt.Errorf("decode actions %q: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.KPIs), &it.KPIs); err != nil {
		return domain.ImprovementItem{}, fmt.Errorf("decode kpis %q: %w", row.ID, err)
	}
	return it, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
