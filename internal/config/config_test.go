package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"JSONKEYS_CONFIG", "JSONKEYS_WORKERS", "JSONKEYS_EXTENSION",
		"QUERY_CACHE_MAX_ITEMS", "QUERY_MAX_FILES",
		"LOG_LEVEL", "LOG_FILE", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS", "LOG_COMPRESS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, "json", cfg.Extension)
	assert.Equal(t, DefaultQueryCacheMaxItems, cfg.QueryCacheMaxItems)
	assert.Equal(t, 0, cfg.QueryMaxFiles)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.LogCompress)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "jsonkeys.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nextension: ndjson\nquery_max_files: 7\nlog_compress: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "ndjson", cfg.Extension)
	assert.Equal(t, 7, cfg.QueryMaxFiles)
	assert.False(t, cfg.LogCompress)

	t.Setenv("JSONKEYS_WORKERS", "9")
	t.Setenv("LOG_COMPRESS", "Yes")
	t.Setenv("QUERY_MAX_FILES", "not-a-number")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
	assert.True(t, cfg.LogCompress)
	assert.Equal(t, 7, cfg.QueryMaxFiles)

	t.Setenv("LOG_COMPRESS", "maybe")
	t.Setenv("QUERY_MAX_FILES", " 4 ")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.LogCompress)
	assert.Equal(t, 4, cfg.QueryMaxFiles)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))
	t.Setenv("JSONKEYS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JSONKEYS_EXTENSION=geojson\n"), 0644))
	// godotenv never overrides variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("JSONKEYS_EXTENSION"))
	t.Cleanup(func() { os.Unsetenv("JSONKEYS_EXTENSION") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "geojson", cfg.Extension)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: [1, 2\n"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
