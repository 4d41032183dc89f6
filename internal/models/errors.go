package models

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports a failed lookup together with the ids that would
// have succeeded, so callers can surface the failure as data rather than
// aborting. Storage I/O failures are never wrapped in this type.
type NotFoundError struct {
	Kind      string // "pattern", "project", "element", "archetype"
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %q not found (available: %s)", e.Kind, e.Name, strings.Join(e.Available, ", "))
}

// IsNotFound reports whether err is a lookup failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError reports malformed input rejected before any write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
