/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a registration or record is not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a key is registered twice
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType is returned when a value has no attribute factory
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrNullEntity is returned when a nil kernel entity is given where a wrapper is required
	ErrNullEntity = errors.New("null entity")

	// ErrKernelFailure is returned when a delegated kernel or store operation fails
	ErrKernelFailure = errors.New("kernel failure")
)

// NotFoundError represents an error when a key is not registered or stored
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a key is already registered
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedTypeError is returned when a value cannot be wrapped into an attribute
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no attribute factory for value of type %s", e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// NullEntityError is returned when an operation requires a non-nil entity
type NullEntityError struct {
	Op string
}

func (e *NullEntityError) Error() string {
	return fmt.Sprintf("%s: entity is nil", e.Op)
}

func (e *NullEntityError) Is(target error) bool {
	return target == ErrNullEntity
}

// KernelError carries a failure raised while delegating to the kernel or
// the attribute store. The underlying error text is preserved.
type KernelError struct {
	Op  string
	Err error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("kernel %s failed: %v", e.Op, e.Err)
}

func (e *KernelError) Is(target error) bool {
	return target == ErrKernelFailure
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Type: kind, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind, key string) error {
	return &AlreadyExistsError{Type: kind, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewUnsupportedTypeError creates a new UnsupportedTypeError for value v
func NewUnsupportedTypeError(v any) error {
	return &UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
}

// NewNullEntityError creates a new NullEntityError
func NewNullEntityError(op string) error {
	return &NullEntityError{Op: op}
}

// NewKernelError wraps err as a KernelError. A nil err yields nil.
func NewKernelError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &KernelError{Op: op, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnsupportedType checks if an error is an unsupported type error
func IsUnsupportedType(err error) bool {
	return errors.Is(err, ErrUnsupportedType)
}

// IsNullEntity checks if an error is a null entity error
func IsNullEntity(err error) bool {
	return errors.Is(err, ErrNullEntity)
}

// IsKernelFailure checks if an error came from a delegated kernel operation
func IsKernelFailure(err error) bool {
	return errors.Is(err, ErrKernelFailure)
}
