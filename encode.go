package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Field is one entry of an ordered settings snapshot.
type Field struct {
	Name  string
	Value any
}

// Snapshot returns the instance's fields as ordered name/value pairs,
// required fields first, matching the schema descriptor's order.
func (s *Schema[T]) Snapshot(v T) []Field {
	rv := reflect.ValueOf(v)
	out := make([]Field, len(s.desc.fields))
	for i, f := range s.desc.fields {
		out[i] = Field{Name: f.name, Value: rv.Field(f.index).Interface()}
	}
	return out
}

// EncodeJSON serializes the instance as a JSON object whose keys follow the
// schema descriptor's order, required fields first. The output is the
// canonical serialized form of the instance: stable across runs and valid
// against the schema's Descriptor document.
func (s *Schema[T]) EncodeJSON(v T) ([]byte, error) {
	rv := reflect.ValueOf(v)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.desc.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.name)
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(rv.Field(f.index).Interface())
		if err != nil {
			return nil, errors.Join(ErrDecode, fmt.Errorf("field %q: %v", f.name, err))
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Descriptor is a structural description of a settings type, independent of
// any instance. It marshals to a JSON Schema document suitable for external
// tooling and documentation.
type Descriptor struct {
	Title    string
	Fields   []FieldDescriptor
	Required []string
}

// FieldDescriptor describes one declared field of a settings type.
type FieldDescriptor struct {
	Name     string
	Type     string // JSON Schema type name
	Required bool
	Default  any // nil unless the field declares a default
}

// Descriptor returns the structural description of the settings type. It is
// derived from the cached schema descriptor and never loads an instance.
func (s *Schema[T]) Descriptor() *Descriptor {
	d := &Descriptor{Title: s.desc.name}
	defaults := reflect.ValueOf(s.defaults)
	for _, f := range s.desc.fields {
		fd := FieldDescriptor{
			Name:     f.name,
			Type:     jsonTypeName(f.typ),
			Required: f.required,
		}
		if !f.required {
			fd.Default = defaults.Field(f.index).Interface()
		}
		d.Fields = append(d.Fields, fd)
		if f.required {
			d.Required = append(d.Required, f.name)
		}
	}
	return d
}

// MarshalJSON renders the descriptor as a JSON Schema (draft-07) object
// document with properties in descriptor order, required fields listed
// explicitly, and additional properties rejected.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"$schema":"http://json-schema.org/draft-07/schema#","title":`)
	title, _ := json.Marshal(d.Title)
	buf.Write(title)
	buf.WriteString(`,"type":"object","properties":{`)
	for i, f := range d.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(f.Name)
		buf.Write(name)
		buf.WriteString(`:{"type":`)
		typ, _ := json.Marshal(f.Type)
		buf.Write(typ)
		if !f.Required {
			def, err := json.Marshal(f.Default)
			if err != nil {
				return nil, fmt.Errorf("default for %q: %w", f.Name, err)
			}
			buf.WriteString(`,"default":`)
			buf.Write(def)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`},"required":[`)
	for i, name := range d.Required {
		if i > 0 {
			buf.WriteByte(',')
		}
		quoted, _ := json.Marshal(name)
		buf.Write(quoted)
	}
	buf.WriteString(`],"additionalProperties":false}`)
	return buf.Bytes(), nil
}

// jsonTypeName maps a declared Go type to its JSON Schema type name.
// Pointers describe their element type; durations serialize as integer
// nanosecond counts and timestamps as RFC 3339 strings.
func jsonTypeName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == timeType {
		return "string"
	}
	switch typ.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return "string" // byte slices serialize as base64 strings
		}
		return "array"
	case reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}
