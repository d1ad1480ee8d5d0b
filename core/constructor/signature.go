package constructor

import (
	"errors"
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// signature describes the parameters of a reflected function.
type signature struct {
	in       []reflect.Type
	variadic bool
}

func newSignature(t reflect.Type) signature {
	s := signature{in: make([]reflect.Type, t.NumIn()), variadic: t.IsVariadic()}
	for i := range s.in {
		s.in[i] = t.In(i)
	}
	return s
}

// bind converts args into call values, checking arity and assignability.
func (s signature) bind(args []any) ([]reflect.Value, error) {
	n := len(s.in)
	switch {
	case s.variadic && len(args) < n-1:
		return nil, fmt.Errorf("want at least %d arguments, got %d", n-1, len(args))
	case !s.variadic && len(args) != n:
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}
	vals := make([]reflect.Value, len(args))
	for i, a := range args {
		want := s.paramType(i)
		v, err := convertArg(a, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func (s signature) paramType(i int) reflect.Type {
	last := len(s.in) - 1
	if s.variadic && i >= last {
		return s.in[last].Elem()
	}
	return s.in[i]
}

func convertArg(a any, want reflect.Type) (reflect.Value, error) {
	if a == nil {
		if nillable(want.Kind()) {
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", want)
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	// Numbers decoded from JSON or YAML arrive as float64 or int; accept them
	// when the conversion round-trips exactly.
	if numeric(v.Kind()) && numeric(want.Kind()) {
		cv := v.Convert(want)
		if cv.Convert(v.Type()).Equal(v) {
			return cv, nil
		}
		return reflect.Value{}, fmt.Errorf("%v does not fit in %s", a, want)
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), want)
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	return nillable(v.Kind()) && v.IsNil()
}

// invoke calls fn, turning panics into errors.
func invoke(fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn.Call(in), nil
}

var errNilResult = errors.New("constructor returned nil")
