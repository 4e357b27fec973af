package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.DemoSeed)
	assert.False(t, cfg.AnalyzerConfigured())
	assert.Equal(t, 1.1, cfg.Insights.CalorieOverRatio)
	assert.Equal(t, 2000.0, cfg.Insights.SodiumAlertMg)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("MONGO_URI", "mongodb://db:27017/other")
	t.Setenv("ALLOWED_ORIGINS", "https://app.nutrameter.com, http://localhost:3000")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("INSIGHTS_SODIUM_ALERT_MG", "1500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, "mongodb://db:27017/other", cfg.MongoURI)
	assert.Equal(t, []string{"https://app.nutrameter.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AnalyzerConfigured())
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 1500.0, cfg.Insights.SodiumAlertMg)
}

func TestDemoSeedOffInProduction(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DemoSeed)

	t.Setenv("DEMO_SEED", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.DemoSeed)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDriver:      StoreMemory,
			AnalyzerProvider: AnalyzerGemini,
			StoreTimeout:     time.Second,
			TokenTTL:         time.Hour,
			JWTSecret:        "s3cret",
		}
	}

	require.NoError(t, valid().Validate())

	c := valid()
	c.StoreDriver = "sqlite"
	assert.ErrorContains(t, c.Validate(), "STORE_DRIVER")

	c = valid()
	c.Environment = "production"
	c.JWTSecret = defaultJWTSecret
	assert.ErrorContains(t, c.Validate(), "JWT_SECRET")

	c = valid()
	c.StoreTimeout = 0
	assert.Error(t, c.Validate())
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"a", "b"}, parseOrigins(" a, ,b "))
	assert.True(t, containsOrigin([]string{"HTTPS://X.com"}, "https://x.com "))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir on Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
