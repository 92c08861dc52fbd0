// Package sanitize normalizes and validates untrusted request input before
// it reaches any business logic. It consolidates validation rules that were
// previously scattered across individual handlers.
package sanitize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/users"
)

const (
	maxEmailLen   = 254
	maxNameLen    = 100
	maxCompanyLen = 200
)

// emailPattern is deliberately strict: one local part, one domain with at
// least one dot, no whitespace or control characters anywhere.
var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Email trims, lower-cases and validates a raw email address.
// The result is stable: Email(Email(x)) == Email(x) for any accepted x.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.Wrapf(errors.ErrMissingField, "email")
	}
	if len(email) > maxEmailLen {
		return "", errors.Wrapf(errors.ErrInvalidFormat, "email exceeds %d characters", maxEmailLen)
	}
	if !emailPattern.MatchString(email) {
		return "", errors.Wrapf(errors.ErrInvalidFormat, "email")
	}
	return email, nil
}

// FieldErrors aggregates every failing field of a form submission so the
// caller can report them all at once instead of stopping at the first.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Unwrap lets errors.Is match FieldErrors against ErrInvalidFormat
func (fe FieldErrors) Unwrap() error {
	return errors.ErrInvalidFormat
}

// RegistrationInput holds the raw fields of a signup submission
type RegistrationInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	TeamSize  string `json:"teamSize"`
}

// Sanitized is the immutable result of a successful registration sanitization
type Sanitized struct {
	Email     string
	FirstName string
	LastName  string
	Company   string
	TeamSize  string
}

// Registration applies per-field rules to a signup submission and returns
// either the sanitized values or a FieldErrors covering every failing field.
func Registration(in RegistrationInput) (*Sanitized, error) {
	fieldErrs := FieldErrors{}

	email, err := Email(in.Email)
	if err != nil {
		fieldErrs["email"] = "a valid email address is required"
	}

	firstName, err := name(in.FirstName)
	if err != nil {
		fieldErrs["firstName"] = err.Error()
	}
	lastName, err := name(in.LastName)
	if err != nil {
		fieldErrs["lastName"] = err.Error()
	}

	company, err := Company(in.Company)
	if err != nil {
		fieldErrs["company"] = err.Error()
	}

	teamSize := strings.TrimSpace(in.TeamSize)
	if teamSize != "" && !users.ValidTeamSize(teamSize) {
		fieldErrs["teamSize"] = "team size must be one of: " + strings.Join(users.TeamSizes, ", ")
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	return &Sanitized{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Company:   company,
		TeamSize:  teamSize,
	}, nil
}

// Name normalizes a single name field (profile updates reuse the signup rule)
func Name(raw string) (string, error) {
	return name(raw)
}

// Company normalizes the optional company field. Signup and profile updates
// share this rule so the two entry points cannot drift.
func Company(raw string) (string, error) {
	c := collapseWhitespace(raw)
	if len(c) > maxCompanyLen {
		return "", fmt.Errorf("company name must be at most %d characters", maxCompanyLen)
	}
	return c, nil
}

func name(raw string) (string, error) {
	n := collapseWhitespace(raw)
	if n == "" {
		return "", fmt.Errorf("name is required")
	}
	if len(n) > maxNameLen {
		return "", fmt.Errorf("name must be at most %d characters", maxNameLen)
	}
	for _, r := range n {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("name contains control characters")
		}
	}
	return n, nil
}

// collapseWhitespace trims and folds internal whitespace runs to one space
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
