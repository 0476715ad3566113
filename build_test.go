package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/settings"
)

type BuildSettings struct {
	Name    string `json:"build_name"`
	Workers int    `json:"build_workers" default:"4"`
	Debug   bool   `json:"build_debug" default:"false"`
}

func TestBuild_ExplicitValues(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{
		"build_name":    "worker-pool",
		"build_workers": 9,
	})
	require.NoError(t, err, "Building from explicit values should succeed")
	assert.Equal(t, "worker-pool", cfg.Name)
	assert.Equal(t, 9, cfg.Workers)
	assert.False(t, cfg.Debug, "Fields absent from the overrides keep their defaults")
}

func TestBuild_BypassesEnvironment(t *testing.T) {
	t.Setenv("BUILD_NAME", "from-env")
	t.Setenv("BUILD_WORKERS", "32")
	t.Setenv("BUILD_DEBUG", "true")

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{"build_name": "explicit"})
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Name, "Override value wins")
	assert.Equal(t, 4, cfg.Workers, "Absent override falls back to the default, never to the environment")
	assert.False(t, cfg.Debug, "Environment values are not consulted at all")
}

func TestBuild_NilTakesEnvironmentPath(t *testing.T) {
	t.Setenv("BUILD_NAME", "from-env")

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name, "A nil overrides map behaves exactly like Load")
}

func TestBuild_UnknownKeysListed(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{
		"build_name": "x",
		"typo":       1,
		"extra":      2,
	})
	require.Error(t, err, "Unknown override keys should be rejected")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "extra", "Every unknown key should be listed")
	assert.Contains(t, err.Error(), "typo")
	assert.Equal(t, BuildSettings{}, cfg)
}

func TestBuild_MissingRequired(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	_, err = schema.Build(map[string]any{"build_workers": 2})
	require.Error(t, err, "Required fields must be present in the overrides themselves")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "build_name")
}

func TestBuild_TypeMismatch(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{
		"build_name":    "x",
		"build_workers": "many",
	})
	require.Error(t, err, "Override values are taken verbatim, a string does not fit an int field")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "build_workers", "Error should name the offending field")
	assert.Equal(t, BuildSettings{}, cfg, "Construction is all-or-nothing")
}

func TestBuild_NoStringCoercionForOverrides(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	_, err = schema.Build(map[string]any{
		"build_name":  "x",
		"build_debug": "true",
	})
	require.Error(t, err, "Environment-style strings are not coerced on the override path")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "build_debug")
}

func TestBuild_NilValuesRejected(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{
		"build_name":    nil,
		"build_workers": nil,
	})
	require.Error(t, err, "A nil never conforms to a non-pointer field")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "build_name", "Every nil-valued field should be listed")
	assert.Contains(t, err.Error(), "build_workers", "A nil must not silently drop an optional field's default")
	assert.Equal(t, BuildSettings{}, cfg, "Construction is all-or-nothing")
}

func TestBuild_TypedNilRejected(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	_, err = schema.Build(map[string]any{
		"build_name":    "x",
		"build_workers": (*int)(nil),
	})
	require.Error(t, err, "A nil pointer serializes as null and must be rejected like a plain nil")
	assert.ErrorIs(t, err, settings.ErrValidation)
	assert.Contains(t, err.Error(), "build_workers")
}

func TestBuild_NilAllowedForPointerField(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[PoolSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{"coerce_max_idle": nil})
	require.NoError(t, err, "Pointer fields hold a nil the way they hold an absent value")
	assert.Nil(t, cfg.MaxIdle, "An explicit nil should land as a nil pointer, not the default")
}

func TestBuild_UnserializableValue(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	_, err = schema.Build(map[string]any{"build_name": make(chan int)})
	require.Error(t, err)
	assert.ErrorIs(t, err, settings.ErrDecode, "Values the codec cannot serialize fail the round trip")
}

func TestBuild_NumericOverridesAcceptFloats(t *testing.T) {
	t.Parallel()

	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	require.NoError(t, err)

	cfg, err := schema.Build(map[string]any{
		"build_name":    "x",
		"build_workers": float64(12),
	})
	require.NoError(t, err, "Whole floats decode into int fields through the codec")
	assert.Equal(t, 12, cfg.Workers)
}
