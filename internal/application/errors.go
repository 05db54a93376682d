package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the viewer's role does not allow the operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when a lesson, code or member does not exist in the group.
	ErrNotFound = errors.New("application: not found")
	// ErrExpired is returned when an attendance code is used after its expiry.
	ErrExpired = errors.New("application: expired")
	// ErrDuplicate is returned when the write would repeat an existing record.
	ErrDuplicate = errors.New("application: duplicate")
	// ErrStorageFailure is returned when a repository fails for reasons the
	// caller cannot correct.
	ErrStorageFailure = errors.New("application: storage failure")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// NewFieldError returns a validation error carrying a single field message.
func NewFieldError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

// Error lists the offending fields in sorted order.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field message; the first message for a field is kept.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}
