package validators

import (
	"errors"
	"unicode/utf8"
)

const minPasswordLength = 8

var ErrPasswordTooShort = errors.New("password must be at least 8 characters long")

// PasswordValidator counts characters, not bytes
func PasswordValidator(p string) error {
	if utf8.RuneCountInString(p) < minPasswordLength {
		return ErrPasswordTooShort
	}

	return nil
}
