package models

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/signin/internal/common"
)

const (
	MaxEmailLength = 255
	MaxNameLength  = 30
	MaxTitleLength = 50
	MaxPhoneLength = 14
)

// Field names as they appear in forms and error maps.
const (
	FieldEmail     = "email"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldTitle     = "title"
	FieldPhone     = "phone"
)

var (
	phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Messages shown next to fields that fail validation.
const (
	PhoneFormatMessage    = "Phone number format should follow: '(999) 999-9999'."
	DuplicateEmailMessage = "This email has already been taken."
	RequiredMessage       = "This field is required."
)

// FieldError is one failed check on one field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// FieldErrors collects per-field validation failures. errors.Is matches any
// of the wrapped sentinels.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() []error {
	errs := make([]error, 0, len(fe))
	for _, e := range fe {
		errs = append(errs, e.Err)
	}
	return errs
}

// Add appends a failure for field.
func (fe *FieldErrors) Add(field string, err error, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message, Err: err})
}

// ByField groups messages per field.
func (fe FieldErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(fe))
	for _, e := range fe {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Fields returns the distinct failing field names, sorted.
func (fe FieldErrors) Fields() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, e := range fe {
		if _, ok := seen[e.Field]; ok {
			continue
		}
		seen[e.Field] = struct{}{}
		names = append(names, e.Field)
	}
	sort.Strings(names)
	return names
}

// Err returns nil when nothing was collected.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ValidatePhone accepts an empty value or the "(NNN) NNN-NNNN" format.
func ValidatePhone(phone string) error {
	if phone == "" || phonePattern.MatchString(phone) {
		return nil
	}
	return common.ErrInvalidPhone
}

// RequireFields records a missing-field error for every empty value.
func RequireFields(fe *FieldErrors, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(values[k]) == "" {
			fe.Add(k, common.ErrMissingField, RequiredMessage)
		}
	}
}

// Validate checks the record invariants: required email and names, field
// lengths, email shape and phone format.
func (a *Account) Validate() error {
	var fe FieldErrors

	RequireFields(&fe, map[string]string{
		FieldEmail:     a.Email,
		FieldFirstName: a.FirstName,
		FieldLastName:  a.LastName,
	})

	if a.Email != "" && !emailPattern.MatchString(a.Email) {
		fe.Add(FieldEmail, common.ErrInvalidField, "Enter a valid email address.")
	}

	checkLength(&fe, FieldEmail, a.Email, MaxEmailLength)
	checkLength(&fe, FieldFirstName, a.FirstName, MaxNameLength)
	checkLength(&fe, FieldLastName, a.LastName, MaxNameLength)
	checkLength(&fe, FieldTitle, a.Title, MaxTitleLength)

	if err := ValidatePhone(a.Phone); err != nil {
		fe.Add(FieldPhone, err, PhoneFormatMessage)
	}

	return fe.Err()
}

func checkLength(fe *FieldErrors, field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		fe.Add(field, common.ErrInvalidField,
			fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, n))
	}
}
