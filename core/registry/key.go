package registry

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
)

// Kind discriminates construction keys so that New and Obtain keep separate
// canonical instances.
type Kind string

const (
	KindNew    Kind = "new"
	KindObtain Kind = "obtain"
)

// Key is an opaque, fixed-size registry key.
type Key [sha256.Size]byte

// String returns the lowercase hex form of the key.
func (k Key) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool { return k == Key{} }

// ConstructionKey derives the key for a New or Obtain request.
func ConstructionKey(kind Kind, typeID string, args []any) (Key, error) {
	s, err := ConstructionString(kind, typeID, args)
	if err != nil {
		return Key{}, err
	}
	return sha256.Sum256([]byte(s)), nil
}

// AliasKey derives the key an instance is published under by As.
func AliasKey(typeID, alias string) Key {
	return sha256.Sum256([]byte(AliasString(typeID, alias)))
}

// ConstructionString returns the canonical string digested by
// ConstructionKey: kind, type id and the JSON form of args joined by ":".
func ConstructionString(kind Kind, typeID string, args []any) (string, error) {
	payload, err := canonicalArgs(args)
	if err != nil {
		return "", err
	}
	return string(kind) + ":" + typeID + ":" + payload, nil
}

// AliasString returns the canonical string digested by AliasKey.
func AliasString(typeID, alias string) string { return typeID + ":" + alias }

// canonicalArgs renders args in a JSON-compatible canonical form. Numbers
// are written by value, so 42 and 42.0 coincide and byte slices read as
// number arrays. Map keys are sorted and struct fields keep declaration
// order. Structs with unexported fields are rejected since their state would
// not be part of the key. nil and empty lists both yield "[]".
func canonicalArgs(args []any) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, a := range args {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(&buf, reflect.ValueOf(a), 0); err != nil {
			return "", fmt.Errorf("%w: argument %d: %v", ErrUnsupportedArgument, i, err)
		}
	}
	buf.WriteByte(']')
	return buf.String(), nil
}
