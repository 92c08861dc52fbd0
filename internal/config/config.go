package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	SecurityConfig
	RateLimitConfig
	UpstreamConfig
}

type mainConfig struct {
	EnvVars
	Security
	RateLimits
	Upstream
}

// New loads an optional .env file and returns the assembled configuration.
// Missing .env files are fine - plain environment variables still apply.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// Validate checks settings that must be present before the gateway can
// safely serve traffic. Outside DEV a weak signing secret is a hard error.
func Validate(c Config) error {
	if c.GetEnv() == "DEV" {
		return nil
	}
	if len(c.GetSigningSecret()) < minSigningSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes outside DEV", minSigningSecretLen)
	}
	if c.GetAuthServiceURL() == "" {
		return fmt.Errorf("AUTH_SERVICE_URL must be set outside DEV")
	}
	return nil
}
