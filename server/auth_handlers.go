package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/sanitize"
	"github.com/jrsteele09/go-edge-gateway/upstream"
)

// maxBodyBytes bounds request bodies before JSON decoding
const maxBodyBytes = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// LoginHandler authenticates credentials against the auth service and
// issues a session cookie. The rate limit attempt is recorded before the
// upstream call, so a cancelled or failed call still counts.
func (s *Server) LoginHandler() http.HandlerFunc {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		res := s.limits.login.Check(clientIP(r))
		if !res.Allowed {
			s.logSecurityEvent(eventRateLimited, "", r, "login")
			s.writeRateLimited(w, res)
			return
		}
		setRateLimitHeaders(w, res)

		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeValidationError(w, "invalid request body")
			return
		}

		if matches := sanitize.DetectSuspiciousPatterns(req.Email); len(matches) > 0 {
			s.logSecurityEvent(eventSuspiciousInput, "", r, matches[0].PatternName)
			s.writeValidationError(w, "invalid email or password format")
			return
		}

		email, err := sanitize.Email(req.Email)
		if err != nil {
			s.writeValidationError(w, "a valid email address is required")
			return
		}
		if req.Password == "" {
			s.writeValidationError(w, "password is required")
			return
		}

		result, err := s.auth.Authenticate(r.Context(), upstream.Credentials{
			Email:    email,
			Password: req.Password,
		})
		if err != nil {
			s.handleAuthFailure(w, r, email, err)
			return
		}

		sess, err := s.sessions.Issue(w, r, result.User, result.BackendToken, 0)
		if err != nil {
			s.events.Error().Err(err).Msg("session issue failed")
			s.writeServerError(w)
			return
		}

		s.logSecurityEvent(eventLoginSucceeded, email, r, "")
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": sess.User,
			"csrf": sess.CSRFToken,
		})
	}
}

// SignupHandler validates a registration submission field by field,
// screens it for abuse signatures and creates the account upstream.
func (s *Server) SignupHandler() http.HandlerFunc {
	type signupRequest struct {
		sanitize.RegistrationInput
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		res := s.limits.signup.Check(clientIP(r))
		if !res.Allowed {
			s.logSecurityEvent(eventRateLimited, "", r, "signup")
			s.writeRateLimited(w, res)
			return
		}
		setRateLimitHeaders(w, res)

		var req signupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeValidationError(w, "invalid request body")
			return
		}

		// Screen every textual field before any other processing
		combined := req.Email + "\n" + req.FirstName + "\n" + req.LastName + "\n" + req.Company
		if matches := sanitize.DetectSuspiciousPatterns(combined); len(matches) > 0 {
			s.logSecurityEvent(eventSuspiciousInput, "", r, matches[0].PatternName)
			s.writeValidationError(w, "submission contains invalid characters")
			return
		}

		sanitized, err := sanitize.Registration(req.RegistrationInput)
		if err != nil {
			var fieldErrs sanitize.FieldErrors
			if errors.As(err, &fieldErrs) {
				s.writeFieldErrors(w, fieldErrs)
				return
			}
			s.writeValidationError(w, "")
			return
		}

		if check := sanitize.CheckPasswordStrength(req.Password); !check.IsValid {
			s.writeValidationError(w, check.Message)
			return
		}

		result, err := s.auth.Register(r.Context(), upstream.Registration{
			Email:     sanitized.Email,
			Password:  req.Password,
			FirstName: sanitized.FirstName,
			LastName:  sanitized.LastName,
			Company:   sanitized.Company,
			TeamSize:  sanitized.TeamSize,
		})
		if err != nil {
			s.handleAuthFailure(w, r, sanitized.Email, err)
			return
		}

		sess, err := s.sessions.Issue(w, r, result.User, result.BackendToken, 0)
		if err != nil {
			s.events.Error().Err(err).Msg("session issue failed")
			s.writeServerError(w)
			return
		}

		s.logSecurityEvent(eventSignupSucceeded, sanitized.Email, r, "")
		s.writeJSON(w, http.StatusCreated, map[string]interface{}{
			"user": sess.User,
			"csrf": sess.CSRFToken,
		})
	}
}

// LogoutHandler clears the session cookie. Idempotent - a request without
// a session still gets the expiring cookie and a 204.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Clear(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleAuthFailure maps upstream auth errors to client responses without
// leaking internal detail.
func (s *Server) handleAuthFailure(w http.ResponseWriter, r *http.Request, email string, err error) {
	switch {
	case errors.Is(err, errors.ErrUpstreamUnavailable):
		s.logSecurityEvent(eventUpstreamUnavailable, email, r, err.Error())
		s.writeUpstreamUnavailable(w)
	case errors.Is(err, errors.ErrUpstreamRejected):
		s.logSecurityEvent(eventLoginFailed, email, r, "")
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	default:
		s.events.Error().Err(err).Msg("unexpected auth failure")
		s.writeServerError(w)
	}
}
