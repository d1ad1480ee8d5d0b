package constructor

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction is matched by every *ConstructionError.
	ErrConstruction = errors.New("constructor: construction failed")
	// ErrVisibility is matched by every *VisibilityError.
	ErrVisibility = errors.New("constructor: method is not public")

	// ErrUnknownType indicates that no constructor is registered for a type id.
	ErrUnknownType = errors.New("constructor: unknown type")
	// ErrNotInvocable indicates a constructor registered WithInternal.
	ErrNotInvocable = errors.New("constructor: not publicly invocable")
	// ErrArguments indicates an arity or argument type mismatch.
	ErrArguments = errors.New("constructor: incompatible arguments")
	// ErrNoMethod indicates that the requested method does not exist.
	ErrNoMethod = errors.New("constructor: no such method")
	// ErrDuplicate indicates an attempt to register a type id twice.
	ErrDuplicate = errors.New("constructor: duplicate registration")
)

// ConstructionError reports why a type could not be constructed.
type ConstructionError struct {
	TypeID string
	Reason string
	Err    error
}

func (e *ConstructionError) Error() string {
	msg := fmt.Sprintf("construct %s: %s", e.TypeID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrConstruction and the underlying cause.
func (e *ConstructionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConstruction}
	}
	return []error{ErrConstruction, e.Err}
}

// VisibilityError reports a reflective call to a method that is not exported.
type VisibilityError struct {
	TypeID string
	Method string
}

func (e *VisibilityError) Error() string {
	return fmt.Sprintf("method %s.%s is not public", e.TypeID, e.Method)
}

func (e *VisibilityError) Unwrap() error { return ErrVisibility }
