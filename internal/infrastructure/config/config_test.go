package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"WSM_APP_NAME":               os.Getenv("WSM_APP_NAME"),
		"WSM_APP_ENV":                os.Getenv("WSM_APP_ENV"),
		"WSM_APP_PORT":               os.Getenv("WSM_APP_PORT"),
		"WSM_DATABASE_HOST":          os.Getenv("WSM_DATABASE_HOST"),
		"WSM_DATABASE_PASSWORD":      os.Getenv("WSM_DATABASE_PASSWORD"),
		"WSM_DATABASE_SSLMODE":       os.Getenv("WSM_DATABASE_SSLMODE"),
		"WSM_WIX_API_BASE_URL":       os.Getenv("WSM_WIX_API_BASE_URL"),
		"WSM_MIGRATION_DEFAULT_MODE": os.Getenv("WSM_MIGRATION_DEFAULT_MODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "wix-store-migrator", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "store_migrator", cfg.Database.DBName)
		assert.Equal(t, "https://www.wixapis.com", cfg.Wix.APIBaseURL)
		assert.Equal(t, 3, cfg.Wix.RetryMaxAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.Wix.RetryBaseDelay)
		assert.Equal(t, 400*time.Millisecond, cfg.Wix.RetryJitter)
		assert.Equal(t, 5*time.Second, cfg.Wix.RetryMaxDelay)
		assert.Equal(t, 100, cfg.Wix.PageSize)
		assert.Equal(t, 10000, cfg.Wix.MaxPages)
		assert.Equal(t, "strict", cfg.Migration.DefaultMode)
		assert.Equal(t, 3, cfg.Migration.ClaimRetries)
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("WSM_APP_NAME", "migrator-test")
		os.Setenv("WSM_WIX_API_BASE_URL", "https://api.example.test")
		os.Setenv("WSM_MIGRATION_DEFAULT_MODE", "lenient")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "migrator-test", cfg.App.Name)
		assert.Equal(t, "https://api.example.test", cfg.Wix.APIBaseURL)
		assert.Equal(t, "lenient", cfg.Migration.DefaultMode)
	})

	t.Run("rejects invalid default mode", func(t *testing.T) {
		clearEnv()
		os.Setenv("WSM_MIGRATION_DEFAULT_MODE", "optimistic")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	defer func() {
		os.Unsetenv("WSM_APP_ENV")
		os.Unsetenv("WSM_DATABASE_PASSWORD")
		os.Unsetenv("WSM_DATABASE_SSLMODE")
	}()

	t.Run("production requires database password", func(t *testing.T) {
		os.Setenv("WSM_APP_ENV", "production")
		os.Unsetenv("WSM_DATABASE_PASSWORD")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		os.Setenv("WSM_APP_ENV", "production")
		os.Setenv("WSM_DATABASE_PASSWORD", "secret")
		os.Setenv("WSM_DATABASE_SSLMODE", "disable")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production accepts complete config", func(t *testing.T) {
		os.Setenv("WSM_APP_ENV", "production")
		os.Setenv("WSM_DATABASE_PASSWORD", "secret")
		os.Setenv("WSM_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "migrator",
		Password: "p@ss word",
		DBName:   "store_migrator",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Password must be URL-escaped
	assert.NotContains(t, dsn, "p@ss word")
}
