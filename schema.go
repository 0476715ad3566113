package settings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// field is one resolved entry of a schema descriptor.
type field struct {
	name     string // json tag name, or the Go field name when untagged
	index    int    // struct field index within the settings type
	typ      reflect.Type
	required bool
	defRaw   string // declared default, meaningful only when !required
}

// descriptor is the cached structural description of one settings type:
// its fields reordered required-first, the name lookup table, and whether
// any field carries validation rules.
type descriptor struct {
	typ         reflect.Type
	name        string
	fields      []field
	byName      map[string]int
	numRequired int
	validated   bool
}

// Schema is a reusable handle binding one settings type to a registry and an
// effective Config. Obtain it once at startup via Define and share it freely;
// all methods are safe for concurrent use.
type Schema[T any] struct {
	reg      *Registry
	cfg      Config
	desc     *descriptor
	envNames []string // environment variable per field, aligned with desc.fields

	// defaultVals seeds every load's working map; values are read-only after
	// Define. The typed prototype exists for Descriptor output and is never
	// used as a decode target, so loads cannot alias its maps or pointers.
	defaultVals map[string]any
	defaults    T
}

// Define registers the settings type T with the registry and returns the
// schema handle used for every subsequent load. All structural work happens
// here: the field descriptor is built (or fetched from cache), environment
// variable names are resolved, and declared defaults are coerced through the
// same pipeline environment values take, so a bad declaration fails once at
// startup instead of on every load.
//
// T must be a struct type. Field names come from the json tag when present
// ("-" excludes the field); fields without a default tag are required.
func Define[T any](r *Registry, cfg Config) (*Schema[T], error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, errors.Join(ErrSchema, fmt.Errorf("settings type %s must be a struct", rt))
	}

	cfg = cfg.normalized()
	if err := checkEncoding(cfg.EnvFileEncoding); err != nil {
		return nil, err
	}

	desc, err := r.descriptorFor(rt)
	if err != nil {
		return nil, err
	}

	s := &Schema[T]{
		reg:      r,
		cfg:      cfg,
		desc:     desc,
		envNames: r.envNamesFor(desc, cfg),
	}
	if s.defaults, s.defaultVals, err = buildDefaults[T](r, desc); err != nil {
		return nil, err
	}
	return s, nil
}

// MustDefine works like Define but panics when the declaration is invalid.
// Schemas are startup-time constructs, so failing fast is usually right.
func MustDefine[T any](r *Registry, cfg Config) *Schema[T] {
	s, err := Define[T](r, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to define settings schema: %v", err))
	}
	return s
}

// Config returns the effective configuration the schema was defined with,
// including defaulted knobs such as the UTF-8 encoding and "__" delimiter.
func (s *Schema[T]) Config() Config {
	return s.cfg
}

// descriptorFor returns the cached descriptor for rt, building it on first
// use. Concurrent first calls may both build; the first stored copy wins so
// descriptor identity stays stable for the registry's lifetime.
func (r *Registry) descriptorFor(rt reflect.Type) (*descriptor, error) {
	r.mu.RLock()
	d, ok := r.descriptors[rt]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := buildDescriptor(rt)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if cached, ok := r.descriptors[rt]; ok {
		d = cached
	} else {
		r.descriptors[rt] = d
	}
	r.mu.Unlock()
	return d, nil
}

// buildDescriptor reflects over the settings type once, splitting fields into
// required and optional groups. Required fields are moved ahead of optional
// ones while keeping declaration order within each group, so serialization
// and schema output stay stable regardless of how the struct is laid out.
func buildDescriptor(rt reflect.Type) (*descriptor, error) {
	var required, optional []field
	validated := false
	seen := make(map[string]struct{}, rt.NumField())

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			base, _, _ := strings.Cut(tag, ",")
			if base == "-" {
				continue
			}
			if base != "" {
				name = base
			}
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Join(ErrSchema, fmt.Errorf("duplicate field name %q in %s", name, rt))
		}
		seen[name] = struct{}{}

		if _, ok := sf.Tag.Lookup("validate"); ok {
			validated = true
		}

		f := field{name: name, index: i, typ: sf.Type}
		if def, ok := sf.Tag.Lookup("default"); ok {
			f.defRaw = def
			optional = append(optional, f)
		} else {
			f.required = true
			required = append(required, f)
		}
	}

	fields := append(required, optional...)
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		byName[f.name] = i
	}

	name := rt.Name()
	if name == "" {
		name = "Settings"
	}
	return &descriptor{
		typ:         rt,
		name:        name,
		fields:      fields,
		byName:      byName,
		numRequired: len(required),
		validated:   validated,
	}, nil
}

// envNamesFor resolves every field to its environment variable name, cached
// per (type, prefix, case sensitivity) combination.
func (r *Registry) envNamesFor(d *descriptor, cfg Config) []string {
	key := envNameKey{typ: d.typ, prefix: cfg.EnvPrefix, caseSensitive: cfg.CaseSensitive}

	r.mu.RLock()
	names, ok := r.envNames[key]
	r.mu.RUnlock()
	if ok {
		return names
	}

	names = make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = envName(f.name, cfg)
	}

	r.mu.Lock()
	if cached, ok := r.envNames[key]; ok {
		names = cached
	} else {
		r.envNames[key] = names
	}
	r.mu.Unlock()
	return names
}

// envName maps a single field name to the environment variable consulted for
// it. Case-sensitive schemas without a prefix use the field name as-is.
func envName(name string, cfg Config) string {
	if cfg.CaseSensitive && cfg.EnvPrefix == "" {
		return name
	}
	if !cfg.CaseSensitive {
		name = screamingSnake(name)
	}
	return cfg.EnvPrefix + name
}

// screamingSnake converts a field name to SCREAMING_SNAKE_CASE. Snake-case
// names pass through upper-cased ("app_name" -> "APP_NAME"); Go-style names
// gain underscores at word boundaries ("MaxConnections" -> "MAX_CONNECTIONS",
// "APIKey" -> "API_KEY"). Existing underscores are kept untouched, so nested
// names like "database__host" resolve to "DATABASE__HOST".
func screamingSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				b.WriteRune('_')
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// buildDefaults coerces every declared default through the same pipeline
// environment values take. The coerced map seeds each load's working map;
// the typed prototype it decodes into backs Descriptor output and proves at
// Define time that every default actually fits its field.
func buildDefaults[T any](r *Registry, d *descriptor) (T, map[string]any, error) {
	var out T
	vals := make(map[string]any, len(d.fields)-d.numRequired)
	if d.numRequired == len(d.fields) {
		return out, vals, nil
	}

	for _, f := range d.fields[d.numRequired:] {
		v, err := r.coerce(f.defRaw, f.typ)
		if err != nil {
			return out, nil, errors.Join(ErrSchema, fmt.Errorf("field %q: invalid default %q: %v", f.name, f.defRaw, err))
		}
		vals[f.name] = v
	}
	if err := decodeInto(vals, &out); err != nil {
		return out, nil, errors.Join(ErrSchema, fmt.Errorf("applying declared defaults: %v", err))
	}
	return out, vals, nil
}
