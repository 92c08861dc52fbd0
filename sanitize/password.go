package sanitize

import (
	"fmt"
	"unicode"
)

// PasswordCheck reports the outcome of a password strength validation.
// Callers surface Message to the user instead of branching on an error.
type PasswordCheck struct {
	IsValid bool
	Message string
}

// CheckPasswordStrength validates a password against the gateway policy:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func CheckPasswordStrength(password string) PasswordCheck {
	if err := ValidatePasswordStrength(password); err != nil {
		return PasswordCheck{IsValid: false, Message: err.Error()}
	}
	return PasswordCheck{IsValid: true}
}

// ValidatePasswordStrength returns the first failing policy rule, or nil
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
