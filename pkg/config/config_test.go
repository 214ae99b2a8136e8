package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cashtrack")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 2, cfg.CascadeWorkers)
	assert.Equal(t, 256, cfg.CascadeQueueSize)
	assert.Equal(t, 3, cfg.CascadeRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.CascadeRetryDelay)
	assert.Equal(t, 60*time.Second, cfg.SummaryCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cashtrack")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("CASCADE_WORKERS", "4")
	t.Setenv("SUMMARY_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4, cfg.CascadeWorkers)
	assert.Equal(t, 5*time.Minute, cfg.SummaryCacheTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURL:    "postgres://localhost:5432/cashtrack",
			JWTSecret:      testSecret,
			CascadeWorkers: 2,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing database URL", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing JWT secret", func(t *testing.T) {
		cfg := valid()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("short JWT secret", func(t *testing.T) {
		cfg := valid()
		cfg.JWTSecret = "too-short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("no workers", func(t *testing.T) {
		cfg := valid()
		cfg.CascadeWorkers = 0
		assert.Error(t, cfg.Validate())
	})
}
