package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "blog.db")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("TIME_ZONE", "Europe/Moscow")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOGIN_RATE_LIMIT", "10")
	t.Setenv("LOGIN_RATE_WINDOW", "30s")
	t.Setenv("S3_BUCKET_NAME", "images")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("SITE_URL", "https://blog.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "blog.db", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, "s3cret", cfg.CSRFSecret)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.Equal(t, 30*time.Second, cfg.LoginRateWindow)
	assert.Equal(t, "images", cfg.S3BucketName)
	assert.False(t, cfg.S3UseSSL)
	assert.Equal(t, "https://blog.example.com", cfg.SiteURL)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "TIME_ZONE", "LOGIN_RATE_LIMIT", "LOGIN_RATE_WINDOW", "S3_USE_SSL", "CSRF_SECRET", "SESSION_SECRET", "SITE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, time.Minute, cfg.LoginRateWindow)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, cfg.SessionSecret, cfg.CSRFSecret)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":         "mysql",
		"TIME_ZONE":         "Mars/Olympus",
		"REDIS_DB":          "one",
		"LOGIN_RATE_WINDOW": "soon",
		"S3_USE_SSL":        "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
