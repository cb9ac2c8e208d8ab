// Package forms validates account data submitted through the console and
// the self-service pages before it reaches the account manager.
package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/signin/internal/server/models"
)

// PasswordMismatchMessage is shown under the confirmation field.
const PasswordMismatchMessage = "The two password fields didn't match."

// ValidationError carries field-level messages for re-rendering a form.
// errors.Is matches the common sentinels behind each message.
type ValidationError struct {
	Fields map[string][]string
	errs   []error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.errs
}

// Has reports whether field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *ValidationError) add(field string, err error, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
	e.errs = append(e.errs, err)
}

func (e *ValidationError) merge(fe models.FieldErrors) {
	for _, f := range fe {
		e.add(f.Field, f.Err, f.Message)
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// fromModel turns record-level field errors raised further down into a
// form error. Other errors are returned unchanged.
func fromModel(err error) error {
	if fe, ok := models.AsFieldErrors(err); ok {
		ve := &ValidationError{}
		ve.merge(fe)
		return ve
	}
	return err
}
