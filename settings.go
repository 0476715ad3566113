package settings

// Config controls how a settings type sources its values from the process
// environment. The zero value is valid: no env file, case-insensitive
// resolution, no prefix, and "__" as the nested-name delimiter.
type Config struct {
	// EnvFile is an optional path to a dotenv file merged into the process
	// environment before the first load. A missing file is skipped silently;
	// an existing but unreadable or malformed file fails the load.
	EnvFile string

	// EnvFileEncoding is the IANA charset name of the env file contents.
	// Empty means UTF-8. Unknown names are rejected at Define time.
	EnvFileEncoding string

	// CaseSensitive disables the SCREAMING_SNAKE_CASE conversion of field
	// names during environment variable resolution, so a field named
	// "app_name" reads the variable "app_name" rather than "APP_NAME".
	CaseSensitive bool

	// EnvPrefix is prepended verbatim to every resolved variable name,
	// including any trailing separator: a prefix "MYAPP_" resolves the field
	// "debug" to "MYAPP_DEBUG".
	EnvPrefix string

	// EnvNestedDelimiter separates logical sections inside flattened field
	// names, e.g. "database__host". It is a naming convention carried in the
	// schema configuration; resolution treats the whole name as one unit.
	EnvNestedDelimiter string
}

// normalized returns a copy with the defaulted knobs filled in, so schemas
// always carry the effective configuration rather than zero values.
func (c Config) normalized() Config {
	if c.EnvFileEncoding == "" {
		c.EnvFileEncoding = "utf-8"
	}
	if c.EnvNestedDelimiter == "" {
		c.EnvNestedDelimiter = "__"
	}
	return c
}
