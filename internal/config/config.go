package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	MetaAppID       string `env:"META_APP_ID,required"`
	MetaAppSecret   string `env:"META_APP_SECRET,required"`
	MetaRedirectURI string `env:"META_REDIRECT_URI,required"`
	FrontendURL     string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	GraphBaseURL        string `env:"GRAPH_BASE_URL" envDefault:"https://graph.facebook.com"`
	GraphAPIVersion     string `env:"GRAPH_API_VERSION" envDefault:"v23.0"`
	GraphProxyURL       string `env:"GRAPH_PROXY_URL"`
	GraphTimeoutSeconds int    `env:"GRAPH_TIMEOUT_SECONDS" envDefault:"30"`

	SessionJWTSecret      string `env:"SESSION_JWT_SECRET,required"`
	SessionTokenTTLHours  int    `env:"SESSION_TOKEN_TTL_HOURS" envDefault:"168"`
	OAuthStateTTLSeconds  int    `env:"OAUTH_STATE_TTL_SECONDS" envDefault:"600"`
	SignupRateLimitPerMin int    `env:"SIGNUP_RATE_LIMIT_PER_MIN" envDefault:"10"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) GraphTimeout() time.Duration {
	return time.Duration(c.GraphTimeoutSeconds) * time.Second
}

func (c *Config) SessionTokenTTL() time.Duration {
	return time.Duration(c.SessionTokenTTLHours) * time.Hour
}

func (c *Config) OAuthStateTTL() time.Duration {
	return time.Duration(c.OAuthStateTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("SESSION_JWT_SECRET", c.SessionJWTSecret); err != nil {
			return err
		}
		if !strings.HasPrefix(c.MetaRedirectURI, "https://") {
			return fmt.Errorf("META_REDIRECT_URI must be https in production (Meta rejects plain http redirect URIs)")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	if c.GraphTimeoutSeconds <= 0 {
		return fmt.Errorf("GRAPH_TIMEOUT_SECONDS must be positive")
	}
	if c.SessionTokenTTLHours <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL_HOURS must be positive")
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
