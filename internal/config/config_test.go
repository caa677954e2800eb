package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"penora-write/internal/database"
	"penora-write/internal/stories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PENORA_AI_API_KEY_FILE", "")
	t.Setenv("PENORA_AI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultAPIURL, cfg.GenerationURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, database.DriverSQLite, cfg.Database().Driver)
	assert.Equal(t, "penora:", cfg.Database().KeyPrefix)

	mode, err := cfg.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, stories.ReconcileMerge, mode)
	if _, statErr := os.Stat(defaultAIKeySecret); statErr != nil {
		assert.Equal(t, "env-key", cfg.Generation().AIAPIKey)
	}
}

func TestLoad_DotEnvAndSecretFile(t *testing.T) {
	dir := t.TempDir()
	secret := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(secret, []byte("  file-key\n"), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PENORA_TEST_DOTENV_URL=http://localhost:8000/\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PENORA_TEST_DOTENV_URL") })

	t.Setenv("PENORA_AI_API_KEY_FILE", secret)
	t.Setenv("PENORA_RECONCILE_MODE", "Overwrite")
	t.Setenv("PENORA_GENERATION_BACKEND", "openai")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/", os.Getenv("PENORA_TEST_DOTENV_URL"))
	assert.Equal(t, "file-key", cfg.AIAPIKey)
	assert.Equal(t, "openai", cfg.Generation().Backend)

	mode, err := cfg.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, stories.ReconcileOverwrite, mode)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("PENORA_AI_API_KEY_FILE", filepath.Join(t.TempDir(), "absent"))
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PENORA_AI_API_KEY_FILE", "")
	t.Setenv("PENORA_RECONCILE_MODE", "replace")
	_, err = Load()
	assert.Error(t, err)
}
