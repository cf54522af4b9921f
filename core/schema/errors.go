package schema

import (
	"fmt"
	"strings"
)

// Error codes attached to validation errors. Values follow errno so
// clients can switch on them without parsing messages.
const (
	EINVAL = 22 // invalid value
	ENOENT = 2  // referenced entity does not exist
	EEXIST = 17 // entity already exists
)

// Error is a single attribute-scoped validation failure.
type Error struct {
	Attribute string
	Message   string
	Code      int
}

// NewError creates a validation error for the given attribute with EINVAL.
func NewError(attribute, message string) *Error {
	return &Error{Attribute: attribute, Message: message, Code: EINVAL}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Attribute, e.Message)
}

// ValidationErrors is an ordered aggregate of attribute-scoped errors.
// It is the unit of propagation for request-time validation faults.
type ValidationErrors struct {
	Errors []*Error
}

// NewValidationErrors creates an empty aggregate.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add appends a single error to the aggregate.
func (v *ValidationErrors) Add(attribute, message string, code int) {
	v.Errors = append(v.Errors, &Error{Attribute: attribute, Message: message, Code: code})
}

// AddError appends err, flattening aggregates and wrapping unknown error
// kinds under the given fallback attribute name.
func (v *ValidationErrors) AddError(fallbackAttribute string, err error) {
	switch e := err.(type) {
	case *Error:
		v.Errors = append(v.Errors, e)
	case *ValidationErrors:
		v.Extend(e)
	default:
		v.Add(fallbackAttribute, err.Error(), EINVAL)
	}
}

// Extend appends every error from another aggregate.
func (v *ValidationErrors) Extend(other *ValidationErrors) {
	v.Errors = append(v.Errors, other.Errors...)
}

// Check returns the aggregate itself as an error when non-empty, nil otherwise.
func (v *ValidationErrors) Check() error {
	if len(v.Errors) > 0 {
		return v
	}
	return nil
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// ResolverError reports a failure during the resolution phase: a referenced
// schema name missing from the registry, or a schema of the wrong kind for
// the requested operation. Resolution faults are startup faults; they are
// never raised while validating a request.
type ResolverError struct {
	Message string
}

func resolverErrorf(format string, args ...any) *ResolverError {
	return &ResolverError{Message: fmt.Sprintf(format, args...)}
}

func (e *ResolverError) Error() string {
	return e.Message
}
