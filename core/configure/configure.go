// Package configure overwrites fields of existing instances from loosely
// typed settings maps, such as those decoded from YAML or JSON.
//
// Only fields the instance already declares are touched: a setting matches an
// exported struct field by its json tag name or, lacking a tag, by its field
// name (case-insensitively). Settings that match nothing are dropped.
package configure

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ErrTarget indicates a value that is not a non-nil pointer to a struct.
var ErrTarget = errors.New("configure: target must be a non-nil pointer to a struct")

// Apply overwrites the fields of inst named by settings and returns inst.
// Fields absent from settings keep their values. Durations may be given as
// strings such as "5s".
func Apply[T any](inst T, settings map[string]any) (T, error) {
	if err := checkTarget(inst); err != nil {
		return inst, err
	}
	if len(settings) == 0 {
		return inst, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		// Map and slice settings replace the field value; they are never
		// merged into, or written through, the existing one.
		ZeroFields: true,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     inst,
	})
	if err != nil {
		return inst, err
	}
	if err := dec.Decode(settings); err != nil {
		return inst, fmt.Errorf("configure %T: %w", inst, err)
	}
	return inst, nil
}

// Keys lists the setting names Apply recognizes for inst, sorted.
func Keys(inst any) ([]string, error) {
	if err := checkTarget(inst); err != nil {
		return nil, err
	}
	t := reflect.TypeOf(inst).Elem()
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

func checkTarget(inst any) error {
	rv := reflect.ValueOf(inst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrTarget, inst)
	}
	return nil
}
