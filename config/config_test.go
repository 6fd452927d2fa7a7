package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves to a fresh directory for the test, so that no .env or cit.toml leaks in.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"CIT_DB", "CIT_LOG_LEVEL", "CIT_QUOTE_CURRENCY", "CIT_API_BASE", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	clearEnv(t)

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
	assert.Equal(t, 120*time.Millisecond, config.CoinPaprika.GetRequestInterval())
	assert.Equal(t, 30*time.Second, config.CoinPaprika.GetTimeout())
	assert.Equal(t, 7*24*time.Hour, config.CoinPaprika.CoinTTL())
	assert.Equal(t, 15*time.Minute, config.CoinPaprika.PriceTTL())
}

func TestLoad_File(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
database = "portfolio.db"
quote_currency = "eur"

[log]
level = "debug"
pretty = true

[coinpaprika]
request_interval = "1s"
timeout = "bogus"
`), 0o644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "portfolio.db", config.Database)
	assert.Equal(t, "EUR", config.QuoteCurrency)
	assert.Equal(t, "debug", config.Log.Level)
	assert.True(t, config.Log.Pretty)
	assert.Equal(t, time.Second, config.CoinPaprika.GetRequestInterval())
	assert.Equal(t, 30*time.Second, config.CoinPaprika.GetTimeout(), "invalid durations fall back")
	assert.Equal(t, 1000, config.CoinPaprika.CoinListLimit, "unset values keep their default")
}

func TestLoad_Errors(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err, "an explicit file must exist")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("database = "), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLoad_Environment(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CIT_API_BASE=http://localhost:9999\n"), 0o644))
	t.Setenv("CIT_DB", "env.db")
	t.Setenv("GEMINI_API_KEY", "secret")

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.db", config.Database)
	assert.Equal(t, "secret", config.Assistant.APIKey)
	assert.Equal(t, "http://localhost:9999", config.CoinPaprika.BaseURL)
}
