// Package benchfixture holds the settings shape and environment data shared
// by the benchmark and profiling harnesses, so both measure the exact same
// workload.
package benchfixture

import "os"

// EnvContent is the nine-variable environment both harnesses construct
// settings from, covering strings, booleans, integers, floats and nested
// names.
const EnvContent = `APP_NAME=test
DEBUG=true
API_KEY=key123
MAX_CONNECTIONS=100
TIMEOUT=30.0
DATABASE__HOST=localhost
DATABASE__PORT=5432
REDIS__HOST=localhost
REDIS__PORT=6379
`

// Settings is the type the harnesses construct repeatedly. AppName is the
// sole required field; everything else declares a default so a bare
// environment still loads.
type Settings struct {
	AppName        string  `json:"app_name"`
	Debug          bool    `json:"debug" default:"false"`
	APIKey         string  `json:"api_key" default:"default"`
	MaxConnections int     `json:"max_connections" default:"100"`
	Timeout        float64 `json:"timeout" default:"30.0"`
	DatabaseHost   string  `json:"database__host" default:"localhost"`
	DatabasePort   int     `json:"database__port" default:"5432"`
	RedisHost      string  `json:"redis__host" default:"localhost"`
	RedisPort      int     `json:"redis__port" default:"6379"`
}

// Baseline mirrors Settings with struct tags for the comparison loader,
// caarlos0/env.
type Baseline struct {
	AppName        string  `env:"APP_NAME,required"`
	Debug          bool    `env:"DEBUG" envDefault:"false"`
	APIKey         string  `env:"API_KEY" envDefault:"default"`
	MaxConnections int     `env:"MAX_CONNECTIONS" envDefault:"100"`
	Timeout        float64 `env:"TIMEOUT" envDefault:"30.0"`
	DatabaseHost   string  `env:"DATABASE__HOST" envDefault:"localhost"`
	DatabasePort   int     `env:"DATABASE__PORT" envDefault:"5432"`
	RedisHost      string  `env:"REDIS__HOST" envDefault:"localhost"`
	RedisPort      int     `env:"REDIS__PORT" envDefault:"6379"`
}

// WriteEnvFile writes EnvContent to path for harness runs that exercise the
// dotenv merge.
func WriteEnvFile(path string) error {
	return os.WriteFile(path, []byte(EnvContent), 0o644)
}
