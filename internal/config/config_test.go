package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.App.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "library:book-added", cfg.Notifier.Channel)
	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("NOTIFIER_HEARTBEAT", "5s")
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.Store.SeedDemo)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Notifier.Heartbeat)
	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts, "invalid ints fall back to the default")
}

func TestValidate(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("STORE_DRIVER", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")

		t.Setenv("JWT_SECRET", "prod-secret")
		_, err = Load()
		assert.ErrorContains(t, err, "AUTH_SHARED_PASSWORD")

		t.Setenv("AUTH_SHARED_PASSWORD", "prod-password")
		_, err = Load()
		assert.NoError(t, err)
	})
}
