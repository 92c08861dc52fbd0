package config

import "time"

type UpstreamConfig interface {
	GetAuthServiceURL() string
	GetAppServiceURL() string
	GetUpstreamTimeout() time.Duration
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

func (Upstream) GetAuthServiceURL() string {
	return GetEnv("AUTH_SERVICE_URL", "http://localhost:9000")
}

// GetAppServiceURL returns the origin serving pages and business APIs
// (dashboard, ingestion, search, conversation) that the gateway fronts.
func (Upstream) GetAppServiceURL() string {
	return GetEnv("APP_SERVICE_URL", "http://localhost:3000")
}

func (Upstream) GetUpstreamTimeout() time.Duration {
	timeout, err := time.ParseDuration(GetEnv("UPSTREAM_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}
