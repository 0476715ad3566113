package settings

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

// envNameKey identifies one cached field-to-variable name mapping. The same
// settings type can be defined with different prefixes or case sensitivity,
// each combination resolving to its own entry.
type envNameKey struct {
	typ           reflect.Type
	prefix        string
	caseSensitive bool
}

// Registry owns every cache the package maintains: schema descriptors, env
// variable name mappings, pointer unwrap results, resolved env file paths, and
// the set of env files already merged into the process environment. Callers
// construct one with NewRegistry and pass it to Define; independent registries
// share nothing, which keeps tests and embedded libraries isolated from each
// other. All methods are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[reflect.Type]*descriptor
	envNames    map[envNameKey][]string
	unwraps     map[reflect.Type]reflect.Type

	// Env file state has its own lock: merging a file into the process
	// environment must happen at most once per absolute path even when
	// loads race, and must not block schema cache reads while file IO runs.
	envMu    sync.Mutex
	absPaths map[string]string
	loaded   map[string]struct{}

	validate *validator.Validate
}

// NewRegistry returns an empty registry ready for Define calls.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[reflect.Type]*descriptor),
		envNames:    make(map[envNameKey][]string),
		unwraps:     make(map[reflect.Type]reflect.Type),
		absPaths:    make(map[string]string),
		loaded:      make(map[string]struct{}),
		validate:    validator.New(),
	}
}

// Reset clears all cached state, primarily for tests that need a clean slate
// between cases. Schemas defined before the reset keep the descriptors they
// already resolved and remain usable, but env files become eligible for
// merging again. Environment variables already set by earlier merges stay
// set, because the process environment is not owned by the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.descriptors = make(map[reflect.Type]*descriptor)
	r.envNames = make(map[envNameKey][]string)
	r.unwraps = make(map[reflect.Type]reflect.Type)
	r.mu.Unlock()

	r.envMu.Lock()
	r.absPaths = make(map[string]string)
	r.loaded = make(map[string]struct{})
	r.envMu.Unlock()
}
