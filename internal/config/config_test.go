package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "diagnosis.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentLeads)
	assert.Equal(t, 6, cfg.Crawl.MaxPages)
	assert.Equal(t, 30, cfg.Crawl.TimeoutSecs)
	assert.InDelta(t, 2, cfg.Crawl.RatePerSecond, 0.001)
	assert.Equal(t, int64(2<<20), cfg.Crawl.MaxBodyBytes)
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.Places.BaseURL)
	assert.InDelta(t, 2414, cfg.Places.RadiusMeters, 0.001)
	assert.Equal(t, 5, cfg.Places.MaxPeers)
	assert.Equal(t, "https://graph.facebook.com/v19.0", cfg.MetaAds.BaseURL)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, "json", cfg.Export.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/diagnosis
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent_leads: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrentLeads)
	// Defaults still apply for unset values
	assert.Equal(t, 6, cfg.Crawl.MaxPages)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DIAGNOSIS_STORE_DRIVER", "postgres")
	t.Setenv("DIAGNOSIS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("DIAGNOSIS_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "diagnosis.db"
	cfg.Batch.MaxConcurrentLeads = 5
	cfg.Crawl.MaxPages = 6
	cfg.Crawl.RatePerSecond = 2
	cfg.Places.MaxPeers = 5
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateDiagnose_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("diagnose"))
}

func TestValidatePostgres_MissingURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateSqlite_MissingPath(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Path = ""

	err := cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentLeads = 0
	err := cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_leads must be between 1 and 50")

	cfg.Batch.MaxConcurrentLeads = 51
	err = cfg.Validate("diagnose")
	assert.Error(t, err)

	cfg.Batch.MaxConcurrentLeads = 50
	assert.NoError(t, cfg.Validate("diagnose"))
}

func TestValidateCrawlBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Crawl.MaxPages = 0
	err := cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "crawl.max_pages")

	cfg.Crawl.MaxPages = 6
	cfg.Crawl.RatePerSecond = 0
	err = cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "crawl.rate_per_second")
}

func TestValidatePeerCap(t *testing.T) {
	cfg := validDefaults()

	cfg.Places.MaxPeers = 6
	err := cfg.Validate("diagnose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "places.max_peers")
}
