package validation

import (
	"strings"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/request"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// ValidateSignup validates an account registration request.
//
// Required fields:
//   - username: non-blank
//   - email: non-blank and containing "@"
//   - password: at least MinPasswordLength characters
func ValidateSignup(req request.SignupRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		errors["username"] = "username is required"
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errors["email"] = "email is required"
	} else if !strings.Contains(email, "@") {
		errors["email"] = "email is invalid"
	}

	if req.Password == "" {
		errors["password"] = "password is required"
	} else if len(req.Password) < MinPasswordLength {
		errors["password"] = "password must be at least 8 characters"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateLogin checks that both credentials are present.
func ValidateLogin(req request.LoginRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Email) == "" {
		errors["email"] = "email is required"
	}
	if req.Password == "" {
		errors["password"] = "password is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
