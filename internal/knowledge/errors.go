package knowledge

import (
	"errors"
	"fmt"
)

// EntityKind names a registry entity referenced by the engine.
type EntityKind string

const (
	EntitySeries    EntityKind = "series"
	EntityBook      EntityKind = "book"
	EntityChapter   EntityKind = "chapter"
	EntityCharacter EntityKind = "character"
)

// ValidationInputError reports a missing or malformed request field.
type ValidationInputError struct {
	Field   string
	Message string
}

func (e *ValidationInputError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Field, e.Message)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind EntityKind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Kind, e.ID)
}

// InfrastructureError wraps a storage failure. It is never retried here.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

func invalidInput(field, format string, args ...any) error {
	return &ValidationInputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError. Registry implementations use it so the
// engine can pass the error through untouched.
func NotFound(kind EntityKind, id int64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// classify leaves the engine's own error kinds alone and wraps everything
// else as an InfrastructureError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		vi *ValidationInputError
		nf *NotFoundError
		ie *InfrastructureError
	)
	if errors.As(err, &vi) || errors.As(err, &nf) || errors.As(err, &ie) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

// IsValidationInput reports whether err is (or wraps) a ValidationInputError.
func IsValidationInput(err error) bool {
	var vi *ValidationInputError
	return errors.As(err, &vi)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInfrastructure reports whether err is (or wraps) an InfrastructureError.
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}
