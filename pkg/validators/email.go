// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"strings"
)

var ErrEmailInvalid = errors.New("valid email is required")

// NormalizeEmail trims and lower-cases e. Emails are only ever stored or
// looked up in this form.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// EmailValidator expects an already normalized address
func EmailValidator(e string) error {
	if e == "" || !strings.Contains(e, "@") {
		return ErrEmailInvalid
	}

	return nil
}
