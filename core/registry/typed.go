package registry

import "fmt"

// Typed is a view of a Factory bound to one type id whose results are
// asserted to T.
type Typed[T any] struct {
	f      *Factory
	typeID string
}

// For returns a typed view of f for typeID.
func For[T any](f *Factory, typeID string) Typed[T] {
	return Typed[T]{f: f, typeID: typeID}
}

// TypeID returns the type id the view was created with.
func (t Typed[T]) TypeID() string { return t.typeID }

// Use is Factory.Use asserted to T.
func (t Typed[T]) Use(alias string) (T, error) {
	return t.cast(t.f.Use(t.typeID, alias))
}

// New is Factory.New asserted to T.
func (t Typed[T]) New(args ...any) (T, error) {
	return t.cast(t.f.New(t.typeID, args...))
}

// Obtain is Factory.Obtain asserted to T.
func (t Typed[T]) Obtain(args ...any) (T, error) {
	return t.cast(t.f.Obtain(t.typeID, args...))
}

// As is Factory.As for a T.
func (t Typed[T]) As(inst T, alias string) (T, error) {
	return t.cast(t.f.As(inst, t.typeID, alias))
}

// Free is Factory.Free.
func (t Typed[T]) Free(inst T) int { return t.f.Free(inst) }

func (t Typed[T]) cast(v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{
			TypeID: t.typeID,
			Want:   fmt.Sprintf("%T", (*T)(nil))[1:],
			Got:    fmt.Sprintf("%T", v),
		}
	}
	return out, nil
}
