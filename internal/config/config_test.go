package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CACHE_TTL", "")
	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/media", cfg.Storage.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "noop", cfg.Events.Type)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("STORAGE_BASE_URL", "https://cdn.example.com/")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("TOKEN_TTL", "garbage")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_USE_SSL", "true")
	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL, "bad durations fall back")
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.True(t, cfg.Storage.S3.UseSSL)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "bizdir.db", redactDSN("bizdir.db"))
	assert.Equal(t, "po***", redactDSN("postgres://u:secret@db/bizdir"))
	assert.Equal(t, "***", mask("ab"))
}
