// Package settings provides typed application settings loaded from
// environment variables, with optional dotenv file seeding, declared
// defaults, and aggressive caching so repeated loads stay cheap.
//
// Settings are plain structs. Field names come from json tags (falling back
// to the Go field name), a `default` tag marks a field optional, and a
// `validate` tag attaches go-playground/validator rules checked after every
// construction:
//
//	type AppSettings struct {
//		AppName  string        `json:"app_name" validate:"min=1"`
//		Debug    bool          `json:"debug" default:"false"`
//		Timeout  time.Duration `json:"timeout" default:"30s"`
//		Tags     []string      `json:"tags" default:"[]"`
//	}
//
// # Architecture
//
// All state lives in an explicit Registry rather than package-level globals.
// Define resolves a settings type once, at startup: it reflects over the
// struct, orders required fields ahead of optional ones, resolves each field
// to its environment variable name, and coerces declared defaults through
// the same pipeline environment values take. The resulting Schema handle
// then performs loads with no further structural work.
//
// A load is a bulk operation, not a field-by-field parse. The working map
// starts from the coerced defaults, present variables are coerced over it
// (JSON detection for '{'/'[' values, scalar fast paths for bool, integer,
// float and duration fields), and the map is round-tripped through the JSON
// codec into a fresh instance. A provided field replaces its default
// wholesale, and loads never share state with the schema or each other. Type
// mismatches anywhere in the struct surface as a single validation error
// naming the field.
//
// The registry caches schema descriptors per type, environment name mappings
// per (type, prefix, case sensitivity), pointer unwrap results, resolved env
// file paths per literal string spelling, and the set of env files already
// merged into the process environment. Every cache is guarded; schemas and
// registries are safe for concurrent use.
//
// # Usage
//
//	reg := settings.NewRegistry()
//
//	schema, err := settings.Define[AppSettings](reg, settings.Config{
//		EnvFile:   ".env",
//		EnvPrefix: "MYAPP_",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := schema.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Or panic on failure for settings the application cannot start without:
//
//	schema := settings.MustDefine[AppSettings](reg, settings.Config{})
//	cfg := schema.MustLoad()
//
// Explicit values bypass the environment entirely, which keeps tests
// hermetic:
//
//	cfg, err := schema.Build(map[string]any{
//		"app_name": "test",
//		"debug":    true,
//	})
//
// # Environment Resolution
//
// By default field names are converted to SCREAMING_SNAKE_CASE and the
// configured prefix is prepended: "app_name" resolves to APP_NAME,
// "MaxConnections" to MAX_CONNECTIONS, "database__host" to DATABASE__HOST.
// With CaseSensitive set and no prefix, the field name is used verbatim.
// Real environment variables always win over env file contents, and an env
// file is merged at most once per process regardless of how many schemas
// reference it.
//
// # Error Handling
//
// The package returns structured errors that can be checked with errors.Is:
//
//	cfg, err := schema.Load()
//	if errors.Is(err, settings.ErrValidation) {
//		// missing required fields, unknown overrides, type mismatches
//	}
//
// ErrSchema covers malformed declarations and is only returned by Define.
// ErrDecode covers malformed JSON in structured values. ErrEnvFile covers
// unreadable or unparseable env files; a missing env file is not an error.
//
// # Serialization
//
// Snapshot returns ordered name/value pairs, EncodeJSON produces the
// canonical JSON form with keys in descriptor order, and Descriptor exposes
// the structure itself, marshaling to a JSON Schema document:
//
//	doc, _ := json.Marshal(schema.Descriptor())
//	// {"$schema":"http://json-schema.org/draft-07/schema#","title":...}
//
// # Testing Helpers
//
// Registry.Reset clears every cache so tests can re-merge env files or
// rebuild descriptors from a clean slate without constructing new schemas.
//
// # Performance Considerations
//
// Define performs all reflection up front. A warm Load does one environment
// lookup per field plus a single JSON round trip, with locking limited to
// registry cache reads and the env file bookkeeping check. See
// cmd/settings-bench for cold and warm comparisons against a struct-tag
// based loader.
package settings
