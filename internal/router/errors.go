package router

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the class of every failure raised before the swap
	// routine is reached.
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrMalformedPayload = fmt.Errorf("%w: malformed payload", ErrInvalidArgument)
	ErrMissingAccount   = fmt.Errorf("%w: missing account", ErrInvalidArgument)
)

// MissingAccountError names the first role the account list could not fill.
type MissingAccountError struct {
	Role  Role
	Index int
}

func (e *MissingAccountError) Error() string {
	return fmt.Sprintf("missing account %q at index %d", e.Role, e.Index)
}

func (e *MissingAccountError) Is(target error) bool {
	return target == ErrMissingAccount || target == ErrInvalidArgument
}
