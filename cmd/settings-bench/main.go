// Command settings-bench measures settings construction cost in two regimes:
// cold, where a fresh process defines the schema and loads once, and warm,
// where one process loads the same schema thousands of times. Both regimes
// run against this package and against a struct-tag baseline built on
// caarlos0/env plus godotenv, and the report compares the two.
//
// Cold measurements spawn the harness binary itself with -cold-child, so
// each sample includes full process startup and first-use cache population.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/settings"
	"github.com/dmitrymomot/settings/internal/benchfixture"
	"github.com/dmitrymomot/settings/internal/logging"
)

const envFile = ".env.bench"

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running settings benchmark: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	coldChild := flag.String("cold-child", "", "internal: run a single cold measurement for the named library and exit")
	coldRuns := flag.Int("cold-runs", 5, "process spawns per library for the cold benchmark")
	warmRuns := flag.Int("warm-runs", 10, "measurement runs per library for the warm benchmark")
	iterations := flag.Int("iterations", 1000, "constructions per warm run")
	warmup := flag.Int("warmup", 50, "constructions discarded before warm measurement starts")
	logFormat := flag.String("log-format", "text", "progress log format: text or json")
	flag.Parse()

	if *coldChild != "" {
		return runColdChild(*coldChild)
	}

	logger := logging.New(logging.WithFormat(logging.Format(*logFormat)))

	if err := benchfixture.WriteEnvFile(envFile); err != nil {
		return fmt.Errorf("writing %s: %w", envFile, err)
	}
	defer os.Remove(envFile)

	// Cold runs go first: the warm phase merges the env file into this
	// process, and spawned children inherit the environment.
	logger.Info("benchmarking cold start", "library", "settings", "runs", *coldRuns)
	coldSettings, err := benchmarkCold("settings", *coldRuns)
	if err != nil {
		return err
	}
	logger.Info("benchmarking cold start", "library", "baseline", "runs", *coldRuns)
	coldBaseline, err := benchmarkCold("baseline", *coldRuns)
	if err != nil {
		return err
	}

	logger.Info("benchmarking warm loads", "library", "settings", "runs", *warmRuns, "iterations", *iterations)
	warmSettings, err := benchmarkWarm(settingsConstructor(), *iterations, *warmup, *warmRuns)
	if err != nil {
		return err
	}
	logger.Info("benchmarking warm loads", "library", "baseline", "runs", *warmRuns, "iterations", *iterations)
	warmBaseline, err := benchmarkWarm(baselineConstructor(), *iterations, *warmup, *warmRuns)
	if err != nil {
		return err
	}

	printReport(reportInput{
		coldRuns:     *coldRuns,
		warmRuns:     *warmRuns,
		iterations:   *iterations,
		warmup:       *warmup,
		coldSettings: coldSettings,
		coldBaseline: coldBaseline,
		warmSettings: warmSettings,
		warmBaseline: warmBaseline,
	})
	return nil
}

// runColdChild performs one first-construction measurement and prints the
// elapsed milliseconds on stdout for the parent to collect.
func runColdChild(library string) error {
	switch library {
	case "settings":
		start := time.Now()
		reg := settings.NewRegistry()
		schema, err := settings.Define[benchfixture.Settings](reg, settings.Config{EnvFile: envFile})
		if err != nil {
			return err
		}
		if _, err := schema.Load(); err != nil {
			return err
		}
		fmt.Println(msSince(start))
	case "baseline":
		start := time.Now()
		if err := godotenv.Load(envFile); err != nil {
			return err
		}
		var cfg benchfixture.Baseline
		if err := env.Parse(&cfg); err != nil {
			return err
		}
		fmt.Println(msSince(start))
	default:
		return fmt.Errorf("unknown cold-child library %q", library)
	}
	return nil
}

// benchmarkCold spawns the harness binary once per run and collects the
// per-process construction time each child reports.
func benchmarkCold(library string, runs int) (stats, error) {
	exe, err := os.Executable()
	if err != nil {
		return stats{}, fmt.Errorf("resolving harness binary: %w", err)
	}

	times := make([]float64, 0, runs)
	for range runs {
		out, err := exec.Command(exe, "-cold-child", library).Output()
		if err != nil {
			return stats{}, fmt.Errorf("cold child (%s): %w", library, err)
		}
		ms, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
		if err != nil {
			return stats{}, fmt.Errorf("cold child (%s) output %q: %w", library, out, err)
		}
		times = append(times, ms)
	}
	return newStats(times), nil
}

// settingsConstructor defines the schema once and returns a closure loading
// it, the intended warm-path usage of this package.
func settingsConstructor() func() error {
	reg := settings.NewRegistry()
	schema := settings.MustDefine[benchfixture.Settings](reg, settings.Config{EnvFile: envFile})
	return func() error {
		_, err := schema.Load()
		return err
	}
}

// baselineConstructor re-reads the env file and re-parses the struct on
// every construction, matching how the baseline stack is typically used.
func baselineConstructor() func() error {
	return func() error {
		if err := godotenv.Load(envFile); err != nil {
			return err
		}
		var cfg benchfixture.Baseline
		return env.Parse(&cfg)
	}
}

// benchmarkWarm measures the mean per-construction time of several runs,
// discarding an initial warmup so caches are populated before timing starts.
func benchmarkWarm(construct func() error, iterations, warmup, runs int) (stats, error) {
	for range warmup {
		if err := construct(); err != nil {
			return stats{}, err
		}
	}

	perRun := make([]float64, 0, runs)
	for range runs {
		start := time.Now()
		for range iterations {
			if err := construct(); err != nil {
				return stats{}, err
			}
		}
		perRun = append(perRun, msSince(start)/float64(iterations))
	}
	return newStats(perRun), nil
}

// stats aggregates one benchmark's per-sample timings in milliseconds.
type stats struct {
	mean, median, stdev, min, max float64
}

func newStats(samples []float64) stats {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, s := range sorted {
		sq += (s - mean) * (s - mean)
	}
	stdev := 0.0
	if len(sorted) > 1 {
		stdev = math.Sqrt(sq / float64(len(sorted)-1))
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return stats{
		mean:   mean,
		median: median,
		stdev:  stdev,
		min:    sorted[0],
		max:    sorted[len(sorted)-1],
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}

type reportInput struct {
	coldRuns, warmRuns, iterations, warmup int
	coldSettings, coldBaseline             stats
	warmSettings, warmBaseline             stats
}

const separator = "======================================================================"

func printReport(in reportInput) {
	fmt.Println(separator)
	fmt.Println("SETTINGS LOADER PERFORMANCE BENCHMARK")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Cold start runs:   %d\n", in.coldRuns)
	fmt.Printf("  Warm runs:         %d\n", in.warmRuns)
	fmt.Printf("  Warm iterations:   %d\n", in.iterations)
	fmt.Printf("  Warmup iterations: %d\n", in.warmup)
	fmt.Println()

	fmt.Println(separator)
	fmt.Println("RESULTS - COLD START (new process, define + first load)")
	fmt.Println(separator)
	printStats("settings.Schema", in.coldSettings, "ms")
	printStats("caarlos0/env + godotenv", in.coldBaseline, "ms")

	fmt.Println(separator)
	fmt.Println("RESULTS - WARM LOADS (per construction, after warmup)")
	fmt.Println(separator)
	printStats("settings.Schema", in.warmSettings, "ms")
	printStats("caarlos0/env + godotenv", in.warmBaseline, "ms")

	fmt.Println(separator)
	fmt.Println("COMPARISON")
	fmt.Println(separator)
	fmt.Println()
	fmt.Printf("%-18s %-18s %-15s %s\n", "Scenario", "settings.Schema", "caarlos0/env", "Advantage")
	fmt.Println(strings.Repeat("-", len(separator)))
	printComparisonRow("Cold start (mean)", in.coldSettings.mean, in.coldBaseline.mean)
	printComparisonRow("Warm loads (mean)", in.warmSettings.mean, in.warmBaseline.mean)
	fmt.Println()
	fmt.Println("Internal speedup (cold vs warm):")
	printSelfSpeedup("settings.Schema", in.coldSettings.mean, in.warmSettings.mean)
	printSelfSpeedup("caarlos0/env + godotenv", in.coldBaseline.mean, in.warmBaseline.mean)
}

func printStats(label string, s stats, unit string) {
	fmt.Println()
	fmt.Printf("%s:\n", label)
	fmt.Printf("  Mean:   %10.4f %s\n", s.mean, unit)
	fmt.Printf("  Median: %10.4f %s\n", s.median, unit)
	fmt.Printf("  Stdev:  %10.4f %s\n", s.stdev, unit)
	fmt.Printf("  Min:    %10.4f %s\n", s.min, unit)
	fmt.Printf("  Max:    %10.4f %s\n", s.max, unit)
	fmt.Println()
}

// printComparisonRow renders one scenario of the side-by-side table, both
// means next to each other with the relative advantage in the last column.
func printComparisonRow(scenario string, settingsMean, baselineMean float64) {
	fmt.Printf("%-18s %-18s %-15s %s\n",
		scenario,
		fmt.Sprintf("%9.4f ms", settingsMean),
		fmt.Sprintf("%9.4f ms", baselineMean),
		advantage(settingsMean, baselineMean))
}

func advantage(settingsMean, baselineMean float64) string {
	switch {
	case settingsMean <= 0 || baselineMean <= 0:
		return "not comparable"
	case settingsMean <= baselineMean:
		return fmt.Sprintf("%.1fx faster", baselineMean/settingsMean)
	default:
		return fmt.Sprintf("%.1fx slower", settingsMean/baselineMean)
	}
}

func printSelfSpeedup(label string, coldMean, warmMean float64) {
	if warmMean <= 0 {
		return
	}
	fmt.Printf("  %-24s %6.1fx faster when warm\n", label+":", coldMean/warmMean)
}
