package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned by the factory for a provider outside the known set.
	ErrUnknownProvider = errors.New("unknown storage provider")
	// ErrMissingField is matched by every *MissingFieldError.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is returned when an optional configuration value cannot be parsed.
	ErrInvalidField = errors.New("invalid field")
	// ErrOperationFailed is matched by every *OperationError.
	ErrOperationFailed = errors.New("storage operation failed")
	// ErrInvalidNode is the cause reported for a nil node or a node without a valid uuid.
	ErrInvalidNode = errors.New("invalid node")
)

// MissingFieldError reports a required configuration key that is absent or empty.
type MissingFieldError struct {
	Provider Provider
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s storage config: missing required field %q", e.Provider, e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// OperationError is returned by the adapters when a bucket check, bucket creation
// or object write fails.
type OperationError struct {
	Provider  Provider
	Operation string
	Bucket    string
	Key       string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("storage operation failed: %s %s/%s (%s): %v", e.Operation, e.Bucket, e.Key, e.Provider, e.Err)
}

// Unwrap exposes both ErrOperationFailed and the underlying cause.
func (e *OperationError) Unwrap() []error {
	return []error{ErrOperationFailed, e.Err}
}
