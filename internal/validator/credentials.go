package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain/model"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	maxEmailLength    = 255
)

// Email trims and lowercases raw and checks it is a bare address.
// Display-name forms like "Bob <bob@example.com>" are rejected.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return "", model.InvalidInput("invalid email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", model.InvalidInput("invalid email")
	}
	return email, nil
}

// Password checks the length in characters, not bytes.
func Password(password string) error {
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return model.InvalidInput(fmt.Sprintf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength))
	}
	return nil
}
