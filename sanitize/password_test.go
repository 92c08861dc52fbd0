package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-edge-gateway/sanitize"
)

func TestCheckPasswordStrength(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		check := sanitize.CheckPasswordStrength("Abcdef12")
		require.True(t, check.IsValid)
		require.Empty(t, check.Message)
	})

	t.Run("too short", func(t *testing.T) {
		check := sanitize.CheckPasswordStrength("Ab1")
		require.False(t, check.IsValid)
		require.Contains(t, check.Message, "at least 8 characters")
	})

	t.Run("missing uppercase", func(t *testing.T) {
		check := sanitize.CheckPasswordStrength("abcdef12")
		require.False(t, check.IsValid)
		require.Contains(t, check.Message, "uppercase")
	})

	t.Run("missing lowercase", func(t *testing.T) {
		check := sanitize.CheckPasswordStrength("ABCDEF12")
		require.False(t, check.IsValid)
		require.Contains(t, check.Message, "lowercase")
	})

	t.Run("missing number", func(t *testing.T) {
		check := sanitize.CheckPasswordStrength("Abcdefgh")
		require.False(t, check.IsValid)
		require.Contains(t, check.Message, "number")
	})
}
