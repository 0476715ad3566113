package settings

import "errors"

// Package-specific errors
var (
	// ErrSchema is returned by Define when the settings type or its Config is
	// malformed: a non-struct type, duplicate field names, an unparseable
	// default value, or an unknown env file encoding.
	ErrSchema = errors.New("invalid settings schema")

	// ErrValidation is returned when a required field is missing, an unknown
	// field is present, or a value does not conform to its declared type. The
	// joined detail always names the offending field(s).
	ErrValidation = errors.New("settings validation failed")

	// ErrDecode is returned when a structured ('{' or '[' prefixed) value is
	// not valid JSON, or when override values cannot be serialized for the
	// bulk decode round trip.
	ErrDecode = errors.New("failed to decode settings value")

	// ErrEnvFile is returned when a configured env file exists but cannot be
	// read, transcoded, or parsed. A missing env file is not an error.
	ErrEnvFile = errors.New("failed to load env file")

	// ErrNilRegistry is returned when Define is given a nil registry.
	ErrNilRegistry = errors.New("nil registry provided to settings definition")
)
