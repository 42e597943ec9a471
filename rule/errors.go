package rule

import (
	"errors"
	"fmt"
)

// Fatal kinds abort a generation call regardless of the failure policy.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrBinding       = errors.New("binding error")
)

// Recoverable kinds are recorded per field under collect-and-continue.
var (
	ErrDependencyCycle       = errors.New("dependency cycle")
	ErrBounds                = errors.New("bounds violated")
	ErrElementRetryExhausted = errors.New("element generation retries exhausted")
)

// IsFatal reports whether err invalidates the whole generation call.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrBinding)
}

// Aborts reports whether err has to stop the enclosing generation: a fatal error
// or a FieldError raised by the fail-fast policy.
func Aborts(err error) bool {
	var fe *FieldError
	return IsFatal(err) || errors.As(err, &fe)
}

// FieldError attaches a field path to a generation failure.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Configurationf builds an ErrConfiguration with a formatted reason.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Boundsf builds an ErrBounds with a formatted reason.
func Boundsf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBounds, fmt.Sprintf(format, args...))
}

// Bindingf builds an ErrBinding with a formatted reason.
func Bindingf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBinding, fmt.Sprintf(format, args...))
}
