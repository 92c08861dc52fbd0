package server_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-edge-gateway/server"
)

func TestLogin_RateLimitScenario(t *testing.T) {
	f := newFixture(t)

	// Attempts 1-5 succeed with a decreasing remaining budget
	for attempt := 0; attempt < 5; attempt++ {
		w := f.do(jsonRequest(http.MethodPost, server.RouteAPILogin, map[string]string{
			"email":    testEmail,
			"password": testPassword,
		}))
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", attempt+1)
		require.Equal(t, strconv.Itoa(4-attempt), w.Header().Get("X-RateLimit-Remaining"))
		require.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	}

	// Attempt 6 in the same window is rejected with retry timing
	w := f.do(jsonRequest(http.MethodPost, server.RouteAPILogin, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	require.Contains(t, f.events.String(), "RATE_LIMIT_EXCEEDED")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPILogin, map[string]string{
		"email":    testEmail,
		"password": "Wrong password 1",
	}))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, w.Result().Cookies(), "no session on failed login")
	require.Contains(t, f.events.String(), "LOGIN_FAILED")
	// The full address never reaches the log
	require.NotContains(t, f.events.String(), testEmail)
	require.Contains(t, f.events.String(), "joh***@example.com")
}

func TestLogin_MalformedEmail(t *testing.T) {
	f := newFixture(t)

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPILogin, map[string]string{
		"email":    "nope",
		"password": testPassword,
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	requireSecurityHeaders(t, w)
}

func TestSignup_Success(t *testing.T) {
	f := newFixture(t)

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPISignup, map[string]string{
		"email":     "new.user@example.com",
		"password":  "Abcdef12",
		"firstName": "New",
		"lastName":  "User",
		"teamSize":  "2-10",
	}))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, w.Result().Cookies(), 1, "signup issues a session")
}

func TestSignup_SuspiciousInputRejected(t *testing.T) {
	f := newFixture(t)

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPISignup, map[string]string{
		"email":     "a@b.com",
		"password":  "Abcdef12",
		"firstName": "<script>",
		"lastName":  "X",
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotContains(t, w.Body.String(), "<script>", "raw input is never echoed")
	require.Contains(t, f.events.String(), "SUSPICIOUS_INPUT")
	require.Contains(t, f.events.String(), "script_tag")
}

func TestSignup_AggregatedFieldErrors(t *testing.T) {
	f := newFixture(t)

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPISignup, map[string]string{
		"email":    "broken",
		"password": "Abcdef12",
		"teamSize": "lots",
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "email")
	require.Contains(t, body, "firstName")
	require.Contains(t, body, "teamSize")
}

func TestSignup_WeakPassword(t *testing.T) {
	f := newFixture(t)

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPISignup, map[string]string{
		"email":     "a@b.com",
		"password":  "weak",
		"firstName": "Jane",
		"lastName":  "Doe",
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "at least 8 characters")
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	cookie, _ := f.login(t)

	req := httptest.NewRequest(http.MethodPost, server.RouteAPILogout, nil)
	req.AddCookie(cookie)
	w := f.do(req)

	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)

	// Idempotent without a session
	w2 := f.do(httptest.NewRequest(http.MethodPost, server.RouteAPILogout, nil))
	require.Equal(t, http.StatusNoContent, w2.Code)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	cookie, _ := f.login(t)

	t.Run("without session", func(t *testing.T) {
		w := f.do(jsonRequest(http.MethodPut, server.RouteAPIProfile, map[string]string{"firstName": "Johnny"}))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("updates and re-issues the session", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIProfile, map[string]string{"firstName": "Johnny"})
		req.AddCookie(cookie)
		w := f.do(req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Johnny")
		require.Len(t, w.Result().Cookies(), 1, "snapshot refresh re-issues the cookie")
	})

	t.Run("suspicious input rejected", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIProfile, map[string]string{"firstName": "../../etc"})
		req.AddCookie(cookie)
		w := f.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, f.events.String(), "SUSPICIOUS_INPUT")
	})

	t.Run("oversized company rejected", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIProfile, map[string]string{"company": strings.Repeat("c", 201)})
		req.AddCookie(cookie)
		w := f.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "company")
	})
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	cookie, csrf := f.login(t)

	newPasswordBody := map[string]string{
		"currentPassword": testPassword,
		"newPassword":     "Newpass12",
	}

	t.Run("without session", func(t *testing.T) {
		w := f.do(jsonRequest(http.MethodPut, server.RouteAPIPassword, newPasswordBody))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing csrf token", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIPassword, newPasswordBody)
		req.AddCookie(cookie)
		w := f.do(req)

		require.Equal(t, http.StatusForbidden, w.Code)
		require.Contains(t, f.events.String(), "CSRF_MISMATCH")
	})

	t.Run("wrong csrf token", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIPassword, newPasswordBody)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", "guessed")
		w := f.do(req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("weak new password", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIPassword, map[string]string{
			"currentPassword": testPassword,
			"newPassword":     "short",
		})
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", csrf)
		w := f.do(req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, server.RouteAPIPassword, newPasswordBody)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", csrf)
		w := f.do(req)

		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestUpstreamDown(t *testing.T) {
	f := newFixture(t)
	f.closeAuthService()

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPILogin, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "temporarily unavailable")
	require.NotContains(t, w.Body.String(), "connection", "no internal detail leaks")
	require.Contains(t, f.events.String(), "UPSTREAM_UNAVAILABLE")
}
