package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "general", cfg.Router.Default)
	assert.NotEmpty(t, cfg.Router.Personas)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dobby.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  model: claude-test
  timeout: 30s
router:
  threshold: 0.5
memory:
  data_dir: /tmp/dobby-test
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude-test", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout.Std())
	assert.Equal(t, 0.5, cfg.Router.Threshold)
	assert.Equal(t, "/tmp/dobby-test", cfg.Memory.DataDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, int64(4096), cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.Memory.MaxRecall)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("DOBBY_DATA_DIR", "/tmp/dobby-env")
	t.Setenv("DOBBY_DEBUG", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "/tmp/dobby-env", cfg.Memory.DataDir)
	assert.True(t, cfg.Logging.Debug)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dobby.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  timeout: soon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownDefaultPersona(t *testing.T) {
	cfg := Default()
	cfg.Router.Default = "nonexistent"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicatePersonas(t *testing.T) {
	cfg := Default()
	cfg.Router.Personas = append(cfg.Router.Personas, PersonaConfig{ID: "general"})
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := Default()
	cfg.Router.Threshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestDirsHangOffDataDir(t *testing.T) {
	cfg := Default()
	cfg.Memory.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "sessions"), cfg.SessionsDir())
	assert.Equal(t, filepath.Join("/data", "chromem"), cfg.VectorDir())
}
