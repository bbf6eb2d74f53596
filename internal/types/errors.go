// README: Error kinds shared by every module; handlers map them to HTTP status codes.
package types

import (
	"errors"
	"fmt"
)

// Error kinds. Module errors wrap exactly one of these so callers can classify
// them with errors.Is.
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrRemote            = errors.New("remote failure")
)

// RemoteError wraps a failed call to an external collaborator (database,
// blob store, directions API, push service).
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemote, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemote, e.Err}
}

// Remote wraps err as a RemoteError; nil stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// Validation builds a ValidationFailed error with a user-facing message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Forbidden builds a PermissionDenied error with a user-facing message.
func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
}
