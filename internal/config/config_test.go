package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("GraphTimeout converts seconds to duration", func(t *testing.T) {
		cfg := &Config{GraphTimeoutSeconds: 30}
		assert.Equal(t, 30*time.Second, cfg.GraphTimeout())
	})

	t.Run("SessionTokenTTL converts hours to duration", func(t *testing.T) {
		cfg := &Config{SessionTokenTTLHours: 168}
		assert.Equal(t, 168*time.Hour, cfg.SessionTokenTTL())
	})

	t.Run("OAuthStateTTL converts seconds to duration", func(t *testing.T) {
		cfg := &Config{OAuthStateTTLSeconds: 600}
		assert.Equal(t, 10*time.Minute, cfg.OAuthStateTTL())
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			MetaRedirectURI:      "https://example.com/auth/meta/callback",
			RedisURL:             "rediss://localhost:6380",
			SessionJWTSecret:     "0123456789abcdef0123456789abcdef",
			GraphTimeoutSeconds:  30,
			SessionTokenTTLHours: 168,
		}
	}

	t.Run("accepts strong production config", func(t *testing.T) {
		assert.NoError(t, base().Validate(true))
	})

	t.Run("rejects short jwt secret in production", func(t *testing.T) {
		cfg := base()
		cfg.SessionJWTSecret = "short"
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects weak jwt secret in production", func(t *testing.T) {
		cfg := base()
		cfg.SessionJWTSecret = "change-me"
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects plain http redirect uri in production", func(t *testing.T) {
		cfg := base()
		cfg.MetaRedirectURI = "http://example.com/cb"
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("allows weak secret outside production", func(t *testing.T) {
		cfg := base()
		cfg.SessionJWTSecret = "dev"
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects non-positive graph timeout", func(t *testing.T) {
		cfg := base()
		cfg.GraphTimeoutSeconds = 0
		assert.Error(t, cfg.Validate(false))
	})
}

func TestLoad(t *testing.T) {
	vars := []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "META_APP_ID", "META_APP_SECRET",
		"META_REDIRECT_URI", "FRONTEND_URL", "GRAPH_API_VERSION",
		"GRAPH_TIMEOUT_SECONDS", "SESSION_JWT_SECRET", "LOG_LEVEL",
	}
	originalEnv := map[string]string{}
	for _, k := range vars {
		originalEnv[k] = os.Getenv(k)
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

	setRequired := func() {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("META_APP_ID", "123456")
		os.Setenv("META_APP_SECRET", "appsecret")
		os.Setenv("META_REDIRECT_URI", "https://example.com/auth/meta/callback")
		os.Setenv("SESSION_JWT_SECRET", "testsecret")
	}

	t.Run("loads config with defaults", func(t *testing.T) {
		setRequired()
		os.Unsetenv("PORT")
		os.Unsetenv("FRONTEND_URL")
		os.Unsetenv("GRAPH_API_VERSION")
		os.Unsetenv("GRAPH_TIMEOUT_SECONDS")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
		assert.Equal(t, "https://graph.facebook.com", cfg.GraphBaseURL)
		assert.Equal(t, "v23.0", cfg.GraphAPIVersion)
		assert.Equal(t, 30, cfg.GraphTimeoutSeconds)
		assert.Equal(t, 168, cfg.SessionTokenTTLHours)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		setRequired()
		os.Setenv("PORT", "3000")
		os.Setenv("GRAPH_API_VERSION", "v24.0")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "v24.0", cfg.GraphAPIVersion)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		setRequired()
		os.Unsetenv("DATABASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required META_APP_ID", func(t *testing.T) {
		setRequired()
		os.Unsetenv("META_APP_ID")

		_, err := Load()
		assert.Error(t, err)
	})
}
