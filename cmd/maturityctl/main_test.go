package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/godilite/maturity-server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(cfg, zap.NewNop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestScoreCmd(t *testing.T) {
	sheet := writeFile(t, "answers.yaml", "answers:\n  101: 1\n  102: 1\n  201: 4\n")

	out, err := run(t, &config.Config{}, "score", sheet)
	require.NoError(t, err)

	var rep scoreReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Categories, 2)
	assert.Equal(t, "planning", rep.Categories[0].Key)
	assert.Equal(t, 1.0, rep.Categories[0].Score)
	assert.Equal(t, "procurement", rep.Categories[1].Key)
	assert.Equal(t, 4.0, rep.Categories[1].Score)
	assert.Equal(t, 2.5, rep.Overall)
	require.NotEmpty(t, rep.Plan)
	assert.Equal(t, "high", rep.Plan[0].Priority)
}

func TestScoreCmd_Errors(t *testing.T) {
	t.Run("out of range value", func(t *testing.T) {
		sheet := writeFile(t, "answers.yaml", "answers:\n  101: 9\n")
		_, err := run(t, &config.Config{}, "score", sheet)
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, &config.Config{}, "score", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "read answer sheet")
	})

	t.Run("bad catalog path", func(t *testing.T) {
		sheet := writeFile(t, "answers.yaml", "answers:\n  101: 3\n")
		_, err := run(t, &config.Config{}, "--catalog", filepath.Join(t.TempDir(), "missing.yaml"), "score", sheet)
		assert.ErrorContains(t, err, "read catalog")
	})
}

func TestCatalogCmd(t *testing.T) {
	out, err := run(t, &config.Config{}, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "planning")
	assert.Contains(t, out, "digitalization")
	assert.Contains(t, out, "improvement items")
}

func TestMigrateCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "maturity.db")

	out, err := run(t, &config.Config{}, "migrate", "--db-driver", "sqlite3", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, dbPath)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	// seeding is an upsert, a second run succeeds
	_, err = run(t, &config.Config{}, "migrate", "--db-driver", "sqlite3", "--db-path", dbPath)
	assert.NoError(t, err)
}
