package engine

import (
	"errors"
	"fmt"
)

// ValidationError is returned before any write when input is rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates the targeted record does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// StateError indicates the record exists but is in the wrong state for the operation.
type StateError struct {
	Kind   string
	ID     int64
	Reason string
}

func (e StateError) Error() string {
	return fmt.Sprintf("%s %d %s", e.Kind, e.ID, e.Reason)
}

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n NotFoundError
	return errors.As(err, &n)
}

func IsState(err error) bool {
	var s StateError
	return errors.As(err, &s)
}
