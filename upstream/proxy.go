package upstream

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/session"
)

// NewRelay builds a reverse proxy to the application origin. The session
// cookie is stripped before forwarding - downstream services only ever see
// the bearer credential - and transport failures surface through onError
// instead of leaking connection detail to the client.
func NewRelay(appURL string, onError func(w http.ResponseWriter, r *http.Request, err error)) (*Relay, error) {
	target, err := url.Parse(appURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[upstream NewRelay] parse app url")
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		onError(w, r, errors.Wrapf(errors.ErrUpstreamUnavailable, "relay %s: %v", r.URL.Path, err))
	}

	return &Relay{proxy: proxy}, nil
}

// Relay forwards page and business-API traffic to the application origin
type Relay struct {
	proxy *httputil.ReverseProxy
}

// Forward relays the request. When a verified session is present its
// backend credential is injected as the Authorization header.
func (rl *Relay) Forward(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	out := r.Clone(r.Context())
	stripSessionCookie(out)
	if sess != nil && sess.BackendToken != "" {
		out.Header.Set("Authorization", "Bearer "+sess.BackendToken)
	}
	rl.proxy.ServeHTTP(w, out)
}

// stripSessionCookie removes the gateway session cookie, keeping any other
// cookies the application origin may expect.
func stripSessionCookie(r *http.Request) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name == session.CookieName {
			continue
		}
		r.AddCookie(c)
	}
}
