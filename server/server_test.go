package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-edge-gateway/server"
	"github.com/jrsteele09/go-edge-gateway/users"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef-test"
	testEmail    = "john.doe@example.com"
	testPassword = "Abcdef12"
	backendToken = "backend-token-1"
)

var testUser = users.Snapshot{
	ID:        "user-1",
	Email:     testEmail,
	FirstName: "John",
	LastName:  "Doe",
	Verified:  true,
}

// testConfig satisfies config.Config without touching the environment
type testConfig struct {
	authURL string
	appURL  string
}

func (testConfig) GetPort() string                  { return ":0" }
func (testConfig) GetAppName() string               { return "Edge Gateway" }
func (testConfig) GetEnv() string                   { return "TEST" }
func (testConfig) GetSigningSecret() string         { return testSecret }
func (testConfig) GetSessionTTL() time.Duration     { return 7 * 24 * time.Hour }
func (testConfig) GetCookieDomain() string          { return "" }
func (c testConfig) GetAuthServiceURL() string      { return c.authURL }
func (c testConfig) GetAppServiceURL() string       { return c.appURL }
func (testConfig) GetUpstreamTimeout() time.Duration { return 2 * time.Second }

func (testConfig) GetLoginLimit() (int, time.Duration)          { return 5, 15 * time.Minute }
func (testConfig) GetSignupLimit() (int, time.Duration)         { return 3, time.Hour }
func (testConfig) GetPasswordChangeLimit() (int, time.Duration) { return 3, time.Hour }

// fixture wires a gateway against fake auth and app origins
type fixture struct {
	gateway *server.Server
	events  *bytes.Buffer
	authSrv *httptest.Server

	// lastAppRequest captures what the app origin received via the relay
	lastAppRequest *http.Request
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{events: &bytes.Buffer{}}

	f.authSrv = httptest.NewServer(http.HandlerFunc(f.fakeAuthService))
	t.Cleanup(f.authSrv.Close)

	appSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastAppRequest = r.Clone(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("app:" + r.URL.Path))
	}))
	t.Cleanup(appSrv.Close)

	gateway, err := server.New(testConfig{authURL: f.authSrv.URL, appURL: appSrv.URL}, zerolog.New(f.events))
	require.NoError(t, err)
	f.gateway = gateway

	return f
}

// closeAuthService simulates the auth service becoming unreachable
func (f *fixture) closeAuthService() {
	f.authSrv.Close()
}

func (f *fixture) fakeAuthService(w http.ResponseWriter, r *http.Request) {
	switch r.Method + " " + r.URL.Path {
	case "POST /v1/auth/login":
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != testEmail || creds.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeAuthResult(w, http.StatusOK, testUser)

	case "POST /v1/auth/register":
		writeAuthResult(w, http.StatusCreated, testUser)

	case "PUT /v1/account/profile":
		if r.Header.Get("Authorization") != "Bearer "+backendToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		updated := testUser
		updated.FirstName = "Johnny"
		writeAuthResult(w, http.StatusOK, updated)

	case "PUT /v1/account/password":
		if r.Header.Get("Authorization") != "Bearer "+backendToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeAuthResult(w http.ResponseWriter, status int, user users.Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  user,
		"token": backendToken,
	})
}

// do runs one request through the gateway's full middleware stack
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.gateway.ServeHTTP(w, req)
	return w
}

// login authenticates through the API and returns the session cookie and
// CSRF token for follow-up requests
func (f *fixture) login(t *testing.T) (*http.Cookie, string) {
	t.Helper()

	w := f.do(jsonRequest(http.MethodPost, server.RouteAPILogin, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		CSRF string `json:"csrf"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0], body.CSRF
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func requireSecurityHeaders(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	require.NotEmpty(t, w.Header().Get("Referrer-Policy"))
	require.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}
