package config

import (
	"strconv"
	"time"
)

// minSigningSecretLen is the minimum secret length accepted outside DEV.
const minSigningSecretLen = 32

// devFallbackSecret keeps local development working without a .env file.
// Validate rejects it in any other environment.
const devFallbackSecret = "dev-only-insecure-session-secret"

type SecurityConfig interface {
	GetSigningSecret() string
	GetSessionTTL() time.Duration
	GetCookieDomain() string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSigningSecret() string {
	return GetEnv("SESSION_SECRET", devFallbackSecret)
}

// GetSessionTTL returns the session lifetime, defaulting to 7 days.
func (Security) GetSessionTTL() time.Duration {
	days, err := strconv.Atoi(GetEnv("SESSION_TTL_DAYS", "7"))
	if err != nil || days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func (Security) GetCookieDomain() string {
	return GetEnv("COOKIE_DOMAIN", "")
}
