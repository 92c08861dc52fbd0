package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/sanitize"
	"github.com/jrsteele09/go-edge-gateway/upstream"
)

// csrfHeader carries the per-session token on state-changing requests
const csrfHeader = "X-CSRF-Token"

// UpdateProfileHandler applies sanitized profile changes upstream and
// re-issues the session so the cached snapshot stays current. The session
// is verified here regardless of the edge gate - the edge check is a UX
// convenience, not the authorization boundary.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	type profileRequest struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Company   string `json:"company"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.FromRequest(r)
		if err != nil {
			s.writeUnauthorized(w)
			return
		}

		var req profileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeValidationError(w, "invalid request body")
			return
		}

		combined := req.FirstName + "\n" + req.LastName + "\n" + req.Company
		if matches := sanitize.DetectSuspiciousPatterns(combined); len(matches) > 0 {
			s.logSecurityEvent(eventSuspiciousInput, sess.User.Email, r, matches[0].PatternName)
			s.writeValidationError(w, "submission contains invalid characters")
			return
		}

		update := upstream.ProfileUpdate{}
		fieldErrs := sanitize.FieldErrors{}
		if update.Company, err = sanitize.Company(req.Company); err != nil {
			fieldErrs["company"] = err.Error()
		}
		if req.FirstName != "" {
			if update.FirstName, err = sanitize.Name(req.FirstName); err != nil {
				fieldErrs["firstName"] = err.Error()
			}
		}
		if req.LastName != "" {
			if update.LastName, err = sanitize.Name(req.LastName); err != nil {
				fieldErrs["lastName"] = err.Error()
			}
		}
		if len(fieldErrs) > 0 {
			s.writeFieldErrors(w, fieldErrs)
			return
		}

		updated, err := s.auth.UpdateProfile(r.Context(), sess.BackendToken, update)
		if err != nil {
			s.handleAccountFailure(w, r, sess.User.Email, err)
			return
		}

		newSess, err := s.sessions.Issue(w, r, *updated, sess.BackendToken, 0)
		if err != nil {
			s.events.Error().Err(err).Msg("session re-issue failed")
			s.writeServerError(w)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{"user": newSess.User})
	}
}

// ChangePasswordHandler rotates the password upstream after re-verifying
// the session, the CSRF token and the new password's strength.
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	type passwordRequest struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.FromRequest(r)
		if err != nil {
			s.writeUnauthorized(w)
			return
		}

		if !validCSRF(r, sess.CSRFToken) {
			s.logSecurityEvent(eventCSRFMismatch, sess.User.Email, r, "")
			s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid request token"})
			return
		}

		res := s.limits.passwordChange.Check(sess.User.ID)
		if !res.Allowed {
			s.logSecurityEvent(eventRateLimited, sess.User.Email, r, "password change")
			s.writeRateLimited(w, res)
			return
		}
		setRateLimitHeaders(w, res)

		var req passwordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeValidationError(w, "invalid request body")
			return
		}
		if req.CurrentPassword == "" {
			s.writeValidationError(w, "current password is required")
			return
		}
		if check := sanitize.CheckPasswordStrength(req.NewPassword); !check.IsValid {
			s.writeValidationError(w, check.Message)
			return
		}

		err = s.auth.ChangePassword(r.Context(), sess.BackendToken, upstream.PasswordChange{
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			s.handleAccountFailure(w, r, sess.User.Email, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// validCSRF compares the request header against the session token in
// constant time.
func validCSRF(r *http.Request, expected string) bool {
	received := r.Header.Get(csrfHeader)
	if expected == "" || received == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// handleAccountFailure maps upstream account errors to client responses
func (s *Server) handleAccountFailure(w http.ResponseWriter, r *http.Request, email string, err error) {
	switch {
	case errors.Is(err, errors.ErrUpstreamUnavailable):
		s.logSecurityEvent(eventUpstreamUnavailable, email, r, err.Error())
		s.writeUpstreamUnavailable(w)
	case errors.Is(err, errors.ErrUpstreamRejected):
		s.writeValidationError(w, "the service could not apply the change")
	default:
		s.events.Error().Err(err).Msg("unexpected account failure")
		s.writeServerError(w)
	}
}
