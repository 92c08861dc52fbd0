// Package session issues, verifies and clears the signed cookie that
// authenticates requests at the edge. Verification is a pure function of
// (token, current time, signing key) - no I/O - so it is cheap enough to
// run ahead of every route handler. Both the edge gate and the individual
// API handlers go through this one implementation, so there is no drift
// between "the edge trusts the session" and "the route re-validates it".
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultTTL is the session lifetime used when the caller passes ttl <= 0
const DefaultTTL = 7 * 24 * time.Hour

// hkdfInfo separates the cookie signing key from any other key derived
// from the same master secret.
const hkdfInfo = "edge-gateway session signing v1"

// Manager signs and verifies session cookies
type Manager struct {
	signingKey   []byte
	ttl          time.Duration
	cookieDomain string
}

// NewManager derives a dedicated signing key from the master secret and
// returns a Manager issuing sessions with the given default ttl.
func NewManager(masterSecret string, ttl time.Duration, cookieDomain string) (*Manager, error) {
	if masterSecret == "" {
		return nil, fmt.Errorf("[session NewManager] master secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(masterSecret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("[session NewManager] key derivation: %w", err)
	}

	return &Manager{signingKey: key, ttl: ttl, cookieDomain: cookieDomain}, nil
}

// Issue builds a signed session for the user snapshot, writes it as an
// HTTP-only cookie and returns the verified form for immediate use.
func (m *Manager) Issue(w http.ResponseWriter, r *http.Request, snapshot users.Snapshot, backendToken string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := NowTimeFunc()
	expiresAt := now.Add(ttl)

	csrfToken, err := generateCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("[session Issue] csrf token: %w", err)
	}

	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
		User:         snapshot,
		CSRFToken:    csrfToken,
		BackendToken: backendToken,
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return nil, fmt.Errorf("[session Issue] signing: %w", err)
	}

	http.SetCookie(w, m.cookie(r, token, int(ttl.Seconds())))

	return &Session{
		User:         snapshot,
		CSRFToken:    csrfToken,
		BackendToken: backendToken,
		IssuedAt:     now,
		ExpiresAt:    expiresAt,
	}, nil
}

// Verify checks the token signature and expiry. It never panics on
// attacker-controlled input; every failure maps to one of the typed
// errors ErrMalformedToken, ErrInvalidSignature or ErrSessionExpired.
func (m *Manager) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, errors.ErrNoSession
	}

	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return m.signingKey, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
		jwtlib.WithExpirationRequired(),
	)

	switch {
	case err == nil && parsed.Valid:
		return &Session{
			User:         claims.User,
			CSRFToken:    claims.CSRFToken,
			BackendToken: claims.BackendToken,
			IssuedAt:     claimTime(claims.IssuedAt),
			ExpiresAt:    claimTime(claims.ExpiresAt),
		}, nil
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, errors.ErrSessionExpired
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return nil, errors.ErrInvalidSignature
	default:
		return nil, errors.ErrMalformedToken
	}
}

// FromRequest extracts and verifies the session cookie in one step.
// API handlers call this directly rather than trusting the edge gate.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, errors.ErrNoSession
	}
	return m.Verify(cookie.Value)
}

// Clear overwrites the session cookie with an immediately expiring empty
// value. Safe to call when no session exists.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, m.cookie(r, "", -1))
}

func (m *Manager) cookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   requestScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// generateCSRFToken creates a random base64url string
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// requestScheme determines the scheme (http/https), honouring proxies
func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

func claimTime(d *jwtlib.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
