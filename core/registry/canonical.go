package registry

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const maxCanonicalDepth = 64

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

	errTooDeep = errors.New("value nested too deeply or cyclic")
)

func writeCanonical(buf *bytes.Buffer, v reflect.Value, depth int) error {
	if depth > maxCanonicalDepth {
		return errTooDeep
	}
	if !v.IsValid() {
		buf.WriteString("null")
		return nil
	}
	if ok, err := writeMarshaler(buf, v); ok {
		return err
	}
	switch v.Kind() {
	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return writeFloat(buf, v.Float())
	case reflect.String:
		return writeString(buf, v.String())
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return writeCanonical(buf, v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, v.Index(i), depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case reflect.Map:
		return writeMap(buf, v, depth)
	case reflect.Struct:
		return writeStruct(buf, v, depth)
	default:
		return fmt.Errorf("unsupported kind %s", v.Kind())
	}
	return nil
}

// writeMarshaler renders values that define their own JSON or text form.
func writeMarshaler(buf *bytes.Buffer, v reflect.Value) (bool, error) {
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return false, nil
	}
	t := v.Type()
	if !t.Implements(jsonMarshalerType) && !t.Implements(textMarshalerType) {
		if t.Kind() == reflect.Pointer || !reflect.PointerTo(t).Implements(jsonMarshalerType) && !reflect.PointerTo(t).Implements(textMarshalerType) {
			return false, nil
		}
		p := reflect.New(t)
		p.Elem().Set(v)
		v = p
	}
	switch m := v.Interface().(type) {
	case json.Marshaler:
		raw, err := m.MarshalJSON()
		if err != nil {
			return true, err
		}
		return true, json.Compact(buf, raw)
	case encoding.TextMarshaler:
		text, err := m.MarshalText()
		if err != nil {
			return true, err
		}
		return true, writeString(buf, string(text))
	}
	return false, nil
}

func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("unsupported float %v", f)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func writeMap(buf *bytes.Buffer, v reflect.Value, depth int) error {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := mapKey(iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, e.key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, e.val, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func mapKey(k reflect.Value) (string, error) {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		text, err := tm.MarshalText()
		return string(text), err
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("unsupported map key type %s", k.Type())
}

func writeStruct(buf *bytes.Buffer, v reflect.Value, depth int) error {
	t := v.Type()
	buf.WriteByte('{')
	written := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			return fmt.Errorf("%s has unexported field %s", t, f.Name)
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			if tagName, _, _ := strings.Cut(tag, ","); tagName != "" {
				name = tagName
			}
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		written++
		if err := writeString(buf, name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, v.Field(i), depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
