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
	// ErrNotFound is returned when a registered resource is not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned when a caller supplies an unusable argument
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreExecution is returned when the store fails to execute a statement
	ErrStoreExecution = errors.New("store execution failed")

	// ErrNoIndexMap is returned when no index map is registered for a table
	ErrNoIndexMap = errors.New("no index map found for table")

	// ErrClosed is returned when work is submitted to a closed resource
	ErrClosed = errors.New("closed")
)

// NotFoundError represents an error when a named resource is not found
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

// InvalidArgumentError is raised before any store interaction when an argument
// (consistency level, TTL, entity, query) cannot be used.
type InvalidArgumentError struct {
	Argument string
	Message  string
}

func (e *InvalidArgumentError) Error() string {
	if e.Argument != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Argument, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// StoreExecutionError wraps a failure reported by the store session.
type StoreExecutionError struct {
	Operation string
	Err       error
}

func (e *StoreExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *StoreExecutionError) Is(target error) bool {
	return target == ErrStoreExecution
}

func (e *StoreExecutionError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resourceType, key string) error {
	return &NotFoundError{Type: resourceType, Key: key}
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(argument, message string) error {
	return &InvalidArgumentError{Argument: argument, Message: message}
}

// NewStoreExecutionError wraps err as a StoreExecutionError. A nil err yields nil.
func NewStoreExecutionError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreExecutionError
	if errors.As(err, &se) {
		return err
	}
	return &StoreExecutionError{Operation: operation, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsStoreExecution checks if an error is a store execution error
func IsStoreExecution(err error) bool {
	return errors.Is(err, ErrStoreExecution)
}
