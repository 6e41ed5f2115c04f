package errors

import (
	"errors"
	"fmt"
)

// NotRegisteredError reports that a registration set holds no entry for a
// page type.
type NotRegisteredError struct {
	DataType string
	Shape    string // registration set name, e.g. "single-page"
}

// Error implements the error interface.
func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("no repository registered for page %s in the %s set of registrations", e.DataType, e.Shape)
}

// Is implements errors.Is support.
func (e *NotRegisteredError) Is(target error) bool {
	return target == ErrNotRegistered
}

// NewNotRegisteredError creates a new NotRegisteredError.
func NewNotRegisteredError(dataType, shape string) *NotRegisteredError {
	return &NotRegisteredError{DataType: dataType, Shape: shape}
}

// RepositoryError wraps the error a repository call settled with. The
// repository's own error is preserved unchanged for errors.Is/As.
type RepositoryError struct {
	Repository string
	DataType   string
	Op         string // "read" or "list"
	Err        error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s failed to %s %s: %v", e.Repository, e.Op, e.DataType, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepositoryFailed
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(repository, dataType, op string, err error) *RepositoryError {
	return &RepositoryError{Repository: repository, DataType: dataType, Op: op, Err: err}
}

// InstantiationError aggregates the constructor failures of every candidate
// repository for a download.
type InstantiationError struct {
	DataType string
	Shape    string
	Errs     []error
}

// Error implements the error interface.
func (e *InstantiationError) Error() string {
	return fmt.Sprintf("no %s repository for page %s could be instantiated: %v", e.Shape, e.DataType, errors.Join(e.Errs...))
}

// Unwrap exposes every constructor error.
func (e *InstantiationError) Unwrap() []error {
	return e.Errs
}

// Is implements errors.Is support.
func (e *InstantiationError) Is(target error) bool {
	return target == ErrInstantiation
}

// IsNotRegistered checks if an error is a registration miss.
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsRepositoryFailure checks if an error came from a repository call.
func IsRepositoryFailure(err error) bool {
	return errors.Is(err, ErrRepositoryFailed)
}

// IsInstantiation checks if an error is an aggregate instantiation failure.
func IsInstantiation(err error) bool {
	return errors.Is(err, ErrInstantiation)
}
