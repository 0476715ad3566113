// Command settings-profile captures CPU and heap profiles of repeated
// settings construction, for digging into where warm loads spend their time.
// It writes standard pprof files consumable with go tool pprof.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/dmitrymomot/settings"
	"github.com/dmitrymomot/settings/internal/benchfixture"
	"github.com/dmitrymomot/settings/internal/logging"
)

const envFile = ".env.profile"

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running settings profiler: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	iterations := flag.Int("iterations", 1000, "settings constructions to profile")
	cpuOut := flag.String("cpuprofile", "settings-cpu.pprof", "CPU profile output path")
	memOut := flag.String("memprofile", "settings-mem.pprof", "heap profile output path")
	logFormat := flag.String("log-format", "text", "progress log format: text or json")
	flag.Parse()

	logger := logging.New(logging.WithFormat(logging.Format(*logFormat)))

	if err := benchfixture.WriteEnvFile(envFile); err != nil {
		return fmt.Errorf("writing %s: %w", envFile, err)
	}
	defer os.Remove(envFile)

	reg := settings.NewRegistry()
	schema, err := settings.Define[benchfixture.Settings](reg, settings.Config{EnvFile: envFile})
	if err != nil {
		return err
	}
	// Populate caches before profiling so the capture reflects warm loads.
	if _, err := schema.Load(); err != nil {
		return err
	}

	logger.Info("profiling settings loads", "iterations", *iterations, "cpu", *cpuOut, "mem", *memOut)

	cpuFile, err := os.Create(*cpuOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *cpuOut, err)
	}
	defer cpuFile.Close()

	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("starting CPU profile: %w", err)
	}
	start := time.Now()
	for range *iterations {
		if _, err := schema.Load(); err != nil {
			pprof.StopCPUProfile()
			return err
		}
	}
	elapsed := time.Since(start)
	pprof.StopCPUProfile()

	memFile, err := os.Create(*memOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *memOut, err)
	}
	defer memFile.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("writing heap profile: %w", err)
	}

	perLoad := elapsed / time.Duration(*iterations)
	logger.Info("profile complete", "total", elapsed, "per_load", perLoad)

	fmt.Printf("Profiled %d loads in %s (%s per load)\n", *iterations, elapsed, perLoad)
	fmt.Println("Inspect with:")
	fmt.Printf("  go tool pprof %s\n", *cpuOut)
	fmt.Printf("  go tool pprof %s\n", *memOut)
	return nil
}
