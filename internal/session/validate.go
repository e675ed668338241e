package session

import (
	"net/mail"
	"strings"
)

// MinPasswordLength matches the backend's registration rule.
const MinPasswordLength = 6

// ValidationError is a client-side check that failed before any request
// was sent. Its message is meant to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Registration is what the sign-up form collects.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form in the order the user sees the fields.
func (r Registration) Validate() error {
	if len(strings.TrimSpace(r.Name)) < 2 {
		return &ValidationError{Field: "name", Message: "Name must be at least 2 characters"}
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "Passwords don't match"}
	}
	if len(r.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return nil
}

// ValidateLogin checks that both credentials were provided.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return &ValidationError{Field: "email", Message: "Enter a valid email address"}
	}
	return nil
}
