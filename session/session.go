package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-edge-gateway/users"
)

// CookieName is the session cookie written on login and cleared on logout
const CookieName = "auth-session"

// Claims is the signed payload carried inside the session cookie
type Claims struct {
	jwtlib.RegisteredClaims
	User         users.Snapshot `json:"user"`
	CSRFToken    string         `json:"csrf"`
	BackendToken string         `json:"backend_token,omitempty"`
}

// Session is a verified, non-expired session as seen by handlers.
// It is constructed fresh per request and never shared across requests.
type Session struct {
	User         users.Snapshot
	CSRFToken    string
	BackendToken string // opaque bearer credential forwarded to upstream services
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
