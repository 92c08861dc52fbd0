package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Security event kinds emitted to the observability sink
const (
	eventLoginFailed         = "LOGIN_FAILED"
	eventLoginSucceeded      = "LOGIN_SUCCEEDED"
	eventSignupSucceeded     = "SIGNUP_SUCCEEDED"
	eventRateLimited         = "RATE_LIMIT_EXCEEDED"
	eventSuspiciousInput     = "SUSPICIOUS_INPUT"
	eventSessionInvalid      = "SESSION_INVALID"
	eventCSRFMismatch        = "CSRF_MISMATCH"
	eventUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// logSecurityEvent emits one structured, redacted record per occurrence.
// Full secrets (passwords, complete emails) never reach the sink.
func (s *Server) logSecurityEvent(kind, email string, r *http.Request, detail string) {
	evt := s.events.Warn().
		Str("event_id", uuid.New().String()).
		Str("kind", kind).
		Str("ip", clientIP(r)).
		Str("method", r.Method).
		Str("path", r.URL.Path)

	if email != "" {
		evt = evt.Str("email", redactEmail(email))
	}
	if detail != "" {
		evt = evt.Str("detail", detail)
	}

	evt.Msg("security event")
}

// redactEmail keeps a short identifying prefix and the domain, enough to
// correlate events without logging the full address.
func redactEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	if len(local) > 3 {
		local = local[:3]
	}
	return local + "***" + email[at:]
}
