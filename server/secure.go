package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-edge-gateway/ratelimit"
)

// contentSecurityPolicy is intentionally conservative: the gateway serves
// JSON and redirects, relayed pages come with their own asset policy.
const contentSecurityPolicy = "default-src 'self'; frame-ancestors 'none'"

// secureHeaders attaches the fixed security header set. Success and error
// paths both go through here, so no response can omit them.
func secureHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Content-Security-Policy", contentSecurityPolicy)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeValidationError returns a 400 with a single generic message. Raw
// attacker input is never echoed back into the body.
func (s *Server) writeValidationError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "invalid request"
	}
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// writeFieldErrors returns a 400 listing each failing field with its rule
func (s *Server) writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
}

// writeRateLimited emits the 429 with Retry-After and X-RateLimit-* headers
func (s *Server) writeRateLimited(w http.ResponseWriter, res ratelimit.Result) {
	setRateLimitHeaders(w, res)
	retryAfter := int64(res.Reset.Sub(ratelimit.NowTimeFunc()).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	s.writeJSON(w, http.StatusTooManyRequests, map[string]string{
		"error": "too many attempts, please try again later",
	})
}

// setRateLimitHeaders reports the remaining budget on every limited route,
// success responses included.
func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.UnixMilli(), 10))
}

func (s *Server) writeUnauthorized(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
}

// writeUpstreamUnavailable hides upstream detail behind a generic 503;
// the specifics go to the security log only.
func (s *Server) writeUpstreamUnavailable(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": "service temporarily unavailable",
	})
}

func (s *Server) writeServerError(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func (s *Server) relayErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	s.logSecurityEvent(eventUpstreamUnavailable, "", r, err.Error())
	s.writeUpstreamUnavailable(w)
}

// clientIP extracts the caller's address, trusting proxy headers first
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
