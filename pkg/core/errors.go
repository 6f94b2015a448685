package core

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned by constructors given malformed or non-finite input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyBuilt is returned when an object is added to a structure that has been built.
	ErrAlreadyBuilt = errors.New("accelerator already built")

	// ErrNotBuilt is returned when a structure that requires Build is queried before it.
	ErrNotBuilt = errors.New("accelerator not built")

	// ErrNoObjects is returned when building or querying a structure that holds no objects.
	ErrNoObjects = errors.New("accelerator holds no objects")

	// ErrNotImplemented marks a capability that is recognised but has no implementation.
	// It is never used to mean "no intersection".
	ErrNotImplemented = errors.New("not implemented")
)

// Invalidf wraps ErrInvalidArgument with a formatted reason.
func Invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// IsInvalidArgument reports whether err was caused by malformed input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
