package settings_test

import (
	"testing"

	"github.com/dmitrymomot/settings"
)

func BenchmarkLoad(b *testing.B) {
	// Setup
	b.Setenv("APP_NAME", "bench")
	b.Setenv("DEBUG", "true")
	b.Setenv("MAX_CONNECTIONS", "50")

	reg := settings.NewRegistry()
	schema, err := settings.Define[AppSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := schema.Load(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoad_DefaultsOnly(b *testing.B) {
	// Setup
	b.Setenv("APP_NAME", "bench")

	reg := settings.NewRegistry()
	schema, err := settings.Define[AppSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := schema.Load(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoad_StructuredValues(b *testing.B) {
	// Setup
	b.Setenv("COERCE_NAME", "bench")
	b.Setenv("COERCE_LABELS", `{"env":"prod","team":"core","zone":"eu"}`)

	reg := settings.NewRegistry()
	schema, err := settings.Define[LabelSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := schema.Load(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild_Overrides(b *testing.B) {
	// Setup
	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}
	overrides := map[string]any{
		"build_name":    "bench",
		"build_workers": 8,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := schema.Build(overrides); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDefine(b *testing.B) {
	// Each iteration pays the full descriptor build on a fresh registry.
	b.ReportAllocs()

	for b.Loop() {
		reg := settings.NewRegistry()
		if _, err := settings.Define[AppSettings](reg, settings.Config{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDefine_CachedDescriptor(b *testing.B) {
	// Setup
	reg := settings.NewRegistry()
	if _, err := settings.Define[AppSettings](reg, settings.Config{}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := settings.Define[AppSettings](reg, settings.Config{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoad_Parallel(b *testing.B) {
	// Setup
	b.Setenv("APP_NAME", "bench")
	b.Setenv("MAX_CONNECTIONS", "50")

	reg := settings.NewRegistry()
	schema, err := settings.Define[AppSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = schema.Load()
		}
	})
}

func BenchmarkSnapshot(b *testing.B) {
	// Setup
	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}
	cfg, err := schema.Build(map[string]any{"build_name": "bench"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_ = schema.Snapshot(cfg)
	}
}

func BenchmarkEncodeJSON(b *testing.B) {
	// Setup
	reg := settings.NewRegistry()
	schema, err := settings.Define[BuildSettings](reg, settings.Config{})
	if err != nil {
		b.Fatal(err)
	}
	cfg, err := schema.Build(map[string]any{"build_name": "bench"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := schema.EncodeJSON(cfg); err != nil {
			b.Fatal(err)
		}
	}
}
