package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/letterserve/pkg/letters"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
[solver]
mode = "fast"

[server]
workers = 8
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := DefaultConfig()
	want.Solver.Mode = "fast"
	want.Server.Workers = 8
	assert.Equal(t, want, cfg)
	assert.Equal(t, letters.ModeFast, cfg.SolverMode())
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// max_batch has the wrong type, so strict decoding fails
	path := writeFile(t, `
[solver]
mode = "fast"
max_letters = 50

[dict]
path = "words.txt"
strict = true

[server]
max_batch = "lots"
max_results = 10

[cli]
limit = 5
show_freq = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "fast", cfg.Solver.Mode)
	assert.Equal(t, 50, cfg.Solver.MaxLetters)
	assert.True(t, cfg.Solver.Rank)
	assert.Equal(t, "words.txt", cfg.Dict.Path)
	assert.True(t, cfg.Dict.Strict)
	assert.Equal(t, DefaultConfig().Server.MaxBatch, cfg.Server.MaxBatch)
	assert.Equal(t, 10, cfg.Server.MaxResults)
	assert.Equal(t, 5, cfg.CLI.Limit)
	assert.False(t, cfg.CLI.ShowFreq)
}

func TestLoadConfigGarbage(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "this is [not toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeFile(t, "[cli]\nlimit = 3\n")
	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 3, cfg.CLI.Limit)
}

func TestSolverModeFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver.Mode = "sideways"
	assert.Equal(t, letters.ModeExhaustive, cfg.SolverMode())
}
