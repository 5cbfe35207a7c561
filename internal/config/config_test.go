package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_DB_URL", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("COMMIT_TIMEZONE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Empty(t, cfg.SupabaseJWKSURL)
	assert.Equal(t, time.UTC, cfg.CommitTimezone)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("TABLE_PREFIX", "custom_")
	t.Setenv("COMMIT_TIMEZONE", "Not/AZone")
	t.Setenv("LOG_MAX_FILES", "-3")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, "custom_", cfg.TablePrefix)
	assert.Equal(t, "https://example.supabase.co/auth/v1/.well-known/jwks.json", cfg.SupabaseJWKSURL)
	assert.Equal(t, time.UTC, cfg.CommitTimezone)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestSetupLogFilePrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"quill-2020-01-01T00-00-00.log", "quill-2020-01-02T00-00-00.log", "quill-2020-01-03T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, f.Name())
	assert.NotContains(t, files, filepath.Join(dir, "quill-2020-01-01T00-00-00.log"))
}
