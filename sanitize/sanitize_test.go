package sanitize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-edge-gateway/internal/errors"
	"github.com/jrsteele09/go-edge-gateway/sanitize"
)

func TestEmail(t *testing.T) {
	t.Run("trims and lower-cases", func(t *testing.T) {
		email, err := sanitize.Email("  John.Doe@Example.COM  ")
		require.NoError(t, err)
		require.Equal(t, "john.doe@example.com", email)
	})

	t.Run("idempotent", func(t *testing.T) {
		once, err := sanitize.Email("Alice+tag@Example.org")
		require.NoError(t, err)
		twice, err := sanitize.Email(once)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := sanitize.Email("   ")
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrMissingField))
	})

	t.Run("missing domain dot", func(t *testing.T) {
		_, err := sanitize.Email("user@localhost")
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidFormat))
	})

	t.Run("embedded whitespace", func(t *testing.T) {
		_, err := sanitize.Email("user name@example.com")
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidFormat))
	})
}

func TestRegistration(t *testing.T) {
	valid := sanitize.RegistrationInput{
		Email:     "a@b.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Company:   "Acme   Widgets",
		TeamSize:  "2-10",
	}

	t.Run("valid submission", func(t *testing.T) {
		got, err := sanitize.Registration(valid)
		require.NoError(t, err)
		require.Equal(t, "a@b.com", got.Email)
		require.Equal(t, "Jane", got.FirstName)
		require.Equal(t, "Acme Widgets", got.Company, "internal whitespace collapses")
	})

	t.Run("aggregates every failing field", func(t *testing.T) {
		_, err := sanitize.Registration(sanitize.RegistrationInput{
			Email:     "not-an-email",
			FirstName: "",
			LastName:  "Doe",
			TeamSize:  "lots",
		})
		require.Error(t, err)

		var fieldErrs sanitize.FieldErrors
		require.True(t, errors.As(err, &fieldErrs))
		require.Len(t, fieldErrs, 3)
		require.Contains(t, fieldErrs, "email")
		require.Contains(t, fieldErrs, "firstName")
		require.Contains(t, fieldErrs, "teamSize")
		require.True(t, errors.Is(err, errors.ErrInvalidFormat))
	})

	t.Run("control characters in name", func(t *testing.T) {
		in := valid
		in.FirstName = "Ja\x07ne"
		_, err := sanitize.Registration(in)
		var fieldErrs sanitize.FieldErrors
		require.True(t, errors.As(err, &fieldErrs))
		require.Contains(t, fieldErrs, "firstName")
	})

	t.Run("company optional", func(t *testing.T) {
		in := valid
		in.Company = ""
		in.TeamSize = ""
		got, err := sanitize.Registration(in)
		require.NoError(t, err)
		require.Empty(t, got.Company)
	})
}

func TestCompany(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		got, err := sanitize.Company("  Acme   Widgets  ")
		require.NoError(t, err)
		require.Equal(t, "Acme Widgets", got)
	})

	t.Run("empty is allowed", func(t *testing.T) {
		got, err := sanitize.Company("")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := sanitize.Company(strings.Repeat("c", 201))
		require.Error(t, err)
		require.Contains(t, err.Error(), "at most 200")
	})
}
