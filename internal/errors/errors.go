package errors

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// The service layer returns a closed set of tagged error variants so the
// HTTP boundary can map error -> status without inspecting messages.

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a required field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing entity (store, equipment, ...).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness violation, typically a duplicate
// generated equipment code or store code.
type ConflictError struct {
	Resource string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Value)
}

func Conflict(resource, value string) *ConflictError {
	return &ConflictError{Resource: resource, Value: value}
}

// AsValidation reports whether err is a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

// AsNotFound reports whether err is a NotFoundError.
func AsNotFound(err error) (*NotFoundError, bool) {
	var n *NotFoundError
	ok := errors.As(err, &n)
	return n, ok
}

// AsConflict reports whether err is a ConflictError.
func AsConflict(err error) (*ConflictError, bool) {
	var c *ConflictError
	ok := errors.As(err, &c)
	return c, ok
}

// IsDuplicateKey reports whether err is a storage-level uniqueness
// violation. GORM translates these only for some dialects, so the driver
// messages for postgres (23505) and sqlite are checked as well. Kept in one
// place so nothing else matches on error strings.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
