package services

import (
	"unicode"

	"github.com/akraslov/notesync/internal/common"
)

const (
	usernameMinLen = 4
	usernameMaxLen = 16
	passwordMinLen = 8
	passwordMaxLen = 64
)

// ValidateUsername checks the 4-16 character, alphanumeric-only rule.
func ValidateUsername(username string) error {
	runes := []rune(username)
	if len(runes) < usernameMinLen || len(runes) > usernameMaxLen {
		return &common.ValidationError{Field: "username", Reason: "must be 4-16 characters long"}
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return &common.ValidationError{Field: "username", Reason: "must contain only letters and digits"}
		}
	}
	return nil
}

// ValidatePassword checks the 8-64 character rule with required upper, lower
// and digit classes and no spaces.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < passwordMinLen || len(runes) > passwordMaxLen {
		return &common.ValidationError{Field: "password", Reason: "must be 8-64 characters long"}
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range runes {
		switch {
		case unicode.IsSpace(r):
			return &common.ValidationError{Field: "password", Reason: "must not contain spaces"}
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return &common.ValidationError{Field: "password", Reason: "must contain an upper-case letter, a lower-case letter and a digit"}
	}
	return nil
}

// ValidateCredentials gates every remote auth call; failures never reach the
// network.
func ValidateCredentials(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword(password)
}
