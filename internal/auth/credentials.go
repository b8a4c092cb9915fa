package auth

import (
	"fmt"
	"regexp"
	"strings"
)

type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLogin:
		return ModeLogin, nil
	case ModeSignup:
		return ModeSignup, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

const MinPasswordLength = 6

type Credentials struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidationError reports the first invalid field of a login or signup form.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks creds for mode and returns a *ValidationError for the first problem found.
func Validate(mode Mode, creds Credentials) error {
	if mode == ModeSignup && strings.TrimSpace(creds.Name) == "" {
		return &ValidationError{Field: "name", Message: "Please enter your name"}
	}
	if strings.TrimSpace(creds.Email) == "" {
		return &ValidationError{Field: "email", Message: "Please enter your email"}
	}
	if mode == ModeSignup && !emailPattern.MatchString(strings.TrimSpace(creds.Email)) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if creds.Password == "" {
		return &ValidationError{Field: "password", Message: "Please enter your password"}
	}
	if mode != ModeSignup {
		return nil
	}
	if len(creds.Password) < MinPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}
	if creds.Password != creds.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	}
	return nil
}
