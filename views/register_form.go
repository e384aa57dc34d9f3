// Package views holds the per-page state the HTML handlers drive: form
// validation, the trip creation wizard, list filtering and the message
// thread. Nothing here renders HTML or talks to the network on its own.
package views

import (
	"sort"
	"strings"
	"unicode/utf8"

	"tripmate/models"
)

// MinPasswordLength is the shortest password the register form accepts.
const MinPasswordLength = 6

// FieldErrors maps a form field name to the message shown next to it.
// It never leaves the page that produced it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns fe as an error, or nil when there is nothing to report.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// RegisterForm is the submitted registration page.
type RegisterForm struct {
	Username        string
	Password        string
	ConfirmPassword string
	FullName        string
	Bio             string
	Preferences     string
}

// Validate checks the form before any request is made.
func (f RegisterForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Username) == "" {
		errs["username"] = "Username is required"
	}
	switch {
	case f.Password == "":
		errs["password"] = "Password is required"
	case utf8.RuneCountInString(f.Password) < MinPasswordLength:
		errs["password"] = "Password must be at least 6 characters"
	}
	if f.Password != f.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match"
	}
	return errs
}

// Data is the registration payload. Empty profile fields stay unset.
func (f RegisterForm) Data() models.RegistrationData {
	return models.RegistrationData{
		Username:    strings.TrimSpace(f.Username),
		Password:    f.Password,
		FullName:    strings.TrimSpace(f.FullName),
		Bio:         strings.TrimSpace(f.Bio),
		Preferences: strings.TrimSpace(f.Preferences),
	}
}
