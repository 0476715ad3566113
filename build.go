package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Load builds a settings instance from the process environment, merging the
// configured env file into it on first use. Fields absent from the
// environment fall back to their declared defaults; required fields without
// a value fail with ErrValidation.
func (s *Schema[T]) Load() (T, error) {
	return s.Build(nil)
}

// MustLoad works like Load but panics on failure. Use it for settings the
// application cannot start without.
func (s *Schema[T]) MustLoad() T {
	v, err := s.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load required settings: %v", err))
	}
	return v
}

// Build constructs a settings instance. A nil or empty overrides map takes
// the environment path, identical to Load. A non-empty map replaces
// environment sourcing entirely: values come from the map verbatim, fields
// absent from it fall back to declared defaults, and the environment is
// never consulted. A nil value fails with ErrValidation unless the field's
// type is a pointer. Construction is all-or-nothing; on any error the zero
// value is returned alongside it.
//
// The working map starts from the coerced defaults and is overlaid with the
// source's values, so a provided field replaces its default wholesale. The
// decode target is a fresh instance every time; loads never share maps,
// slices or pointers with each other or with the schema.
func (s *Schema[T]) Build(overrides map[string]any) (T, error) {
	var zero T

	vals := make(map[string]any, len(s.desc.fields))
	maps.Copy(vals, s.defaultVals)

	if len(overrides) == 0 {
		if err := s.reg.ensureEnvFile(s.cfg); err != nil {
			return zero, err
		}
		if err := s.collectEnv(vals); err != nil {
			return zero, err
		}
	} else {
		if err := s.desc.checkOverrides(overrides); err != nil {
			return zero, err
		}
		maps.Copy(vals, overrides)
	}

	if err := s.desc.checkRequired(vals); err != nil {
		return zero, err
	}

	var out T
	if err := decodeInto(vals, &out); err != nil {
		return zero, err
	}

	if s.desc.validated {
		if err := s.reg.validate.Struct(&out); err != nil {
			return zero, validationError(err)
		}
	}
	return out, nil
}

// collectEnv overlays coerced values for every field with a variable present
// in the environment. Fields without one keep their defaults in the working
// map.
func (s *Schema[T]) collectEnv(vals map[string]any) error {
	for i, f := range s.desc.fields {
		raw, ok := os.LookupEnv(s.envNames[i])
		if !ok {
			continue
		}
		v, err := s.reg.coerce(raw, f.typ)
		if err != nil {
			if errors.Is(err, ErrDecode) {
				return fmt.Errorf("field %q (%s): %w", f.name, s.envNames[i], err)
			}
			return errors.Join(ErrValidation, fmt.Errorf("field %q (%s): %v", f.name, s.envNames[i], err))
		}
		vals[f.name] = v
	}
	return nil
}

// checkOverrides rejects override keys that name no declared field and nil
// values for fields that cannot hold one, all offenders listed in one error.
// The nil check happens here because the codec writes nil as null and null
// never fails a decode, so a nil value would otherwise skip conversion
// without a report. Pointer fields are the declared way to hold no value,
// so they accept nil.
func (d *descriptor) checkOverrides(vals map[string]any) error {
	var unknown, nilValued []string
	for k, v := range vals {
		i, ok := d.byName[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if isNilValue(v) && d.fields[i].typ.Kind() != reflect.Pointer {
			nilValued = append(nilValued, k)
		}
	}
	if len(unknown) == 0 && len(nilValued) == 0 {
		return nil
	}

	errs := []error{ErrValidation}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		errs = append(errs, fmt.Errorf("unknown fields: %s", strings.Join(unknown, ", ")))
	}
	if len(nilValued) > 0 {
		slices.Sort(nilValued)
		errs = append(errs, fmt.Errorf("nil values for fields: %s", strings.Join(nilValued, ", ")))
	}
	return errors.Join(errs...)
}

// isNilValue reports whether v serializes as JSON null: an untyped nil or a
// typed nil pointer, map or slice.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// checkRequired ensures every required field has a value, all missing names
// listed in one error.
func (d *descriptor) checkRequired(vals map[string]any) error {
	var missing []string
	for _, f := range d.fields[:d.numRequired] {
		if _, ok := vals[f.name]; !ok {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Join(ErrValidation, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
}

// decodeInto round-trips the working map through the JSON codec so every
// field is converted and type-checked in a single pass over a fresh
// instance. Type mismatches surface as validation failures naming the
// field; values the codec cannot serialize surface as decode failures.
func decodeInto(vals map[string]any, out any) error {
	buf, err := json.Marshal(vals)
	if err != nil {
		return errors.Join(ErrDecode, fmt.Errorf("encoding values: %v", err))
	}
	if err := json.Unmarshal(buf, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return errors.Join(ErrValidation, fmt.Errorf("field %q: cannot decode %s into %s", typeErr.Field, typeErr.Value, typeErr.Type))
		}
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// validationError flattens rule failures reported by the validator into the
// package error taxonomy, keeping field names visible to the caller.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Join(ErrValidation, err)
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("field %q failed rule %q", fe.Field(), fe.Tag())
	}
	return errors.Join(ErrValidation, errors.New(strings.Join(parts, "; ")))
}
