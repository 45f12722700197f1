package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTokenExpired marks an id token the LINE verify endpoint reported as
// expired. The boundary maps it to a 403 instead of the generic error body.
var ErrTokenExpired = errors.New("id token is expired")

// ErrMemberNotFound is returned when a purchase is attempted for a user
// that has no membership record yet (init was never called).
var ErrMemberNotFound = errors.New("membership record not found")

// ValidationError carries the ordered list of request-validation messages.
// The boundary joins them with newlines into a 400 response.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// TemplateMissingError is raised when no receipt-message template exists
// for the requested language. Only Japanese templates are populated today.
type TemplateMissingError struct {
	Language string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("no message template for language %q", e.Language)
}
