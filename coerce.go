package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// coerce converts one raw string into a value the bulk decode can place into
// a field of the declared type.
//
// Structured values win over everything: a leading '{' or '[' means JSON,
// even when the field is declared as a string. Scalar kinds take direct fast
// paths, pointer types unwrap to their element type and recurse, and any
// other declared type keeps the raw string for the decode step to resolve
// or reject.
func (r *Registry) coerce(raw string, typ reflect.Type) (any, error) {
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errors.Join(ErrDecode, fmt.Errorf("invalid JSON value: %v", err))
		}
		return v, nil
	}

	if typ.Kind() == reflect.Pointer {
		return r.coerce(raw, r.unwrap(typ))
	}

	switch typ.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Bool:
		return parseBool(raw), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if typ == durationType {
			return parseDuration(raw)
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as %s: %w", raw, typ, err)
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as %s: %w", raw, typ, err)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as %s: %w", raw, typ, err)
		}
		return f, nil
	}

	return raw, nil
}

// parseBool reports whether raw spells an accepted truthy value. Anything
// outside the set is false by contract, never an error.
func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}

// parseDuration accepts Go duration syntax ("250ms", "1h30m") and falls back
// to a bare base-10 nanosecond count, the representation durations take in
// serialized output.
func parseDuration(raw string) (any, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return int64(d), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %q as time.Duration: %w", raw, err)
	}
	return n, nil
}

// unwrap resolves typ to its first non-pointer type, cached per declared
// type so repeated loads of optional fields skip the reflect walk.
func (r *Registry) unwrap(typ reflect.Type) reflect.Type {
	r.mu.RLock()
	inner, ok := r.unwraps[typ]
	r.mu.RUnlock()
	if ok {
		return inner
	}

	inner = typ
	for inner.Kind() == reflect.Pointer {
		inner = inner.Elem()
	}

	r.mu.Lock()
	r.unwraps[typ] = inner
	r.mu.Unlock()
	return inner
}
