package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
)

// routeClass is the edge classification of an inbound request path
type routeClass int

const (
	routePublic routeClass = iota
	routeAPI
	routeProtected
	routeAuth
)

// classifyRoute maps a request path onto exactly one class.
// API routes are exempt from edge session gating - every API handler
// re-validates the session itself.
func classifyRoute(path string) routeClass {
	switch {
	case strings.HasPrefix(path, apiPrefix):
		return routeAPI
	case path == RouteLogin || path == RouteSignup:
		return routeAuth
	case path == protectedPrefix || strings.HasPrefix(path, protectedPrefix+"/"):
		return routeProtected
	default:
		return routePublic
	}
}

// EdgeHandler gates every request by route class. Each request resolves to
// exactly one terminal outcome: forwarded, redirected to login, or
// redirected to the authenticated landing page.
func (s *Server) EdgeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch classifyRoute(r.URL.Path) {
		case routeAPI:
			s.mux.ServeHTTP(w, r)

		case routeProtected:
			sess, err := s.sessions.FromRequest(r)
			if err != nil {
				// A broken or expired cookie is cleared before the
				// redirect so the client does not resend it forever.
				if !errors.Is(err, errors.ErrNoSession) {
					s.sessions.Clear(w, r)
					s.logSecurityEvent(eventSessionInvalid, "", r, err.Error())
				}
				s.redirectToLogin(w, r)
				return
			}
			s.relay.Forward(w, r, sess)

		case routeAuth:
			// An already authenticated user skips the login/signup forms
			_, err := s.sessions.FromRequest(r)
			if err == nil {
				http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
				return
			}
			// A dead cookie on the login form is cleared just like on
			// protected routes, so the client stops resending it.
			if !errors.Is(err, errors.ErrNoSession) {
				s.sessions.Clear(w, r)
				s.logSecurityEvent(eventSessionInvalid, "", r, err.Error())
			}
			s.relay.Forward(w, r, nil)

		default:
			s.relay.Forward(w, r, nil)
		}
	}
}

// redirectToLogin preserves the intended path so login can return the user
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := RouteLogin + "?redirect=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
