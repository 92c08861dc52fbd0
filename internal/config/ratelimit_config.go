package config

import (
	"strconv"
	"time"
)

type RateLimitConfig interface {
	GetLoginLimit() (int, time.Duration)
	GetSignupLimit() (int, time.Duration)
	GetPasswordChangeLimit() (int, time.Duration)
}

type RateLimits struct{}

var _ RateLimitConfig = RateLimits{}

// GetLoginLimit returns the per-IP login attempt budget (default 5 / 15m).
func (RateLimits) GetLoginLimit() (int, time.Duration) {
	return limitFromEnv("RATE_LIMIT_LOGIN", 5, 15*time.Minute)
}

// GetSignupLimit returns the per-IP signup budget (default 3 / 1h).
func (RateLimits) GetSignupLimit() (int, time.Duration) {
	return limitFromEnv("RATE_LIMIT_SIGNUP", 3, time.Hour)
}

// GetPasswordChangeLimit returns the per-user password change budget (default 3 / 1h).
func (RateLimits) GetPasswordChangeLimit() (int, time.Duration) {
	return limitFromEnv("RATE_LIMIT_PASSWORD", 3, time.Hour)
}

func limitFromEnv(prefix string, defaultLimit int, defaultWindow time.Duration) (int, time.Duration) {
	limit := defaultLimit
	if v, err := strconv.Atoi(GetEnv(prefix+"_MAX", "")); err == nil && v > 0 {
		limit = v
	}
	window := defaultWindow
	if v, err := time.ParseDuration(GetEnv(prefix+"_WINDOW", "")); err == nil && v > 0 {
		window = v
	}
	return limit, window
}
