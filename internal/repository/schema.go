package repository

import (
	"context"
	"fmt"
)

// schema is written in the subset of SQL shared by SQLite and PostgreSQL.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id           BIGINT PRIMARY KEY,
	category_key TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	id          BIGINT PRIMARY KEY,
	category_id BIGINT NOT NULL REFERENCES categories(id),
	prompt      TEXT NOT NULL,
	weight      INTEGER NOT NULL CHECK (weight >= 1),
	active      BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS improvement_items (
	id              TEXT PRIMARY KEY,
	category_key    TEXT NOT NULL,
	priority        TEXT NOT NULL,
	score_threshold DOUBLE PRECISION NOT NULL,
	tier            TEXT NOT NULL DEFAULT 'operational',
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	actions         TEXT NOT NULL DEFAULT '[]',
	kpis            TEXT NOT NULL DEFAULT '[]',
	position        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS survey_results (
	id                     TEXT PRIMARY KEY,
	name                   TEXT NOT NULL DEFAULT '',
	email                  TEXT NOT NULL,
	company                TEXT NOT NULL,
	industry               TEXT NOT NULL DEFAULT '',
	company_size           TEXT NOT NULL DEFAULT '',
	overall_score          DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at             TIMESTAMP NOT NULL,
	updated_at             TIMESTAMP NOT NULL,
	narrative              TEXT,
	narrative_generated_at TIMESTAMP,
	UNIQUE (email, company)
);

CREATE INDEX IF NOT EXISTS idx_survey_results_industry ON survey_results (industry);

CREATE TABLE IF NOT EXISTS answers (
	result_id   TEXT NOT NULL REFERENCES survey_results(id) ON DELETE CASCADE,
	question_id BIGINT NOT NULL,
	score       INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
	PRIMARY KEY (result_id, question_id)
);

CREATE TABLE IF NOT EXISTS category_scores (
	result_id    TEXT NOT NULL REFERENCES survey_results(id) ON DELETE CASCADE,
	category_key TEXT NOT NULL,
	score        DOUBLE PRECISION NOT NULL,
	max_score    DOUBLE PRECISION NOT NULL DEFAULT 5,
	PRIMARY KEY (result_id, category_key)
);

CREATE TABLE IF NOT EXISTS recommended_plan (
	result_id     TEXT NOT NULL REFERENCES survey_results(id) ON DELETE CASCADE,
	item_id       TEXT NOT NULL,
	priority      TEXT NOT NULL,
	display_order INTEGER NOT NULL,
	rank_key      INTEGER NOT NULL,
	PRIMARY KEY (result_id, item_id)
);
`

// Migrate creates the schema if it does not exist yet.
func (r *AssessmentRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
