package auth

import (
	"fmt"
	"regexp"
)

const (
	defaultMinPasswordLength = 6

	msgInvalidEmail = "Invalid Email Format"
	msgUnauthorized = "Unauthorized"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email has the accepted ASCII local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// passwordTooShort returns the caller-facing message for a short password, or "".
// Length is counted in bytes.
func passwordTooShort(password string, min int) string {
	if len(password) >= min {
		return ""
	}
	return fmt.Sprintf("Password must be at least %d characters long", min)
}
