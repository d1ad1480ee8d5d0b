package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("registry: not found")
	// ErrUnsupportedArgument indicates an argument list that has no canonical
	// serialization (channels, functions, NaN).
	ErrUnsupportedArgument = errors.New("registry: unsupported argument")
	// ErrNilInstance indicates an attempt to store a nil instance.
	ErrNilInstance = errors.New("registry: nil instance")
	// ErrTypeMismatch is matched by every *TypeMismatchError.
	ErrTypeMismatch = errors.New("registry: type mismatch")
)

// NotFoundError reports a Use call for an alias nothing was published under.
type NotFoundError struct {
	TypeID string
	Alias  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: no instance of %s published as %q", e.TypeID, e.Alias)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TypeMismatchError reports a stored instance whose dynamic type differs from
// the type requested through a typed view.
type TypeMismatchError struct {
	TypeID string
	Want   string
	Got    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("registry: %s holds %s, want %s", e.TypeID, e.Got, e.Want)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
