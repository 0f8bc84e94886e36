// Command voxfix corrects and validates the voiceline transcript corpus.
//
// Usage:
//
//	voxfix validate [flags] [path]   check every file against the known schemas
//	voxfix fix      [flags] [path]   fix catalogued Whisper errors (dry-run by default)
//	voxfix scrub    [flags] [path]   clear hallucinated text in pain/effort files
//	voxfix suggest  [flags] [path]   report candidate rules for the curated table
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/MrWong99/voxfix/internal/batch"
	"github.com/MrWong99/voxfix/internal/config"
	"github.com/MrWong99/voxfix/internal/rules"
)

const defaultConfigFile = "voxfix.yaml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	verb := args[0]
	switch verb {
	case "validate", "fix", "scrub", "suggest":
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "voxfix: unknown command %q\n\n", verb)
		usage()
		return 2
	}

	// ── CLI flags ─────────────────────────────────────────────────────────────
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the YAML configuration file (default: voxfix.yaml when present)")
	rulesPath := fs.String("rules", "", "path to a rule table YAML file (default: the embedded curated table)")
	logLevel := fs.String("log-level", "", "log verbosity: debug, info, warn, error")

	var dryRun, apply, verbose *bool
	if verb == "fix" || verb == "scrub" {
		dryRun = fs.Bool("dry-run", true, "report changes without modifying files")
		apply = fs.Bool("apply", false, "persist changes to disk")
		verbose = fs.Bool("verbose", false, "print every change")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	// Conflicting flags are a configuration error, reported before any file
	// processing begins.
	if apply != nil && *apply {
		explicitDryRun := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "dry-run" {
				explicitDryRun = true
			}
		})
		if explicitDryRun && *dryRun {
			fmt.Fprintln(os.Stderr, "voxfix: --dry-run and --apply are mutually exclusive")
			return 2
		}
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "voxfix: expected at most one path argument, got %d\n", fs.NArg())
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxfix: %v\n", err)
		return 2
	}
	if *logLevel != "" {
		cfg.LogLevel = config.LogLevel(*logLevel)
		if !cfg.LogLevel.IsValid() {
			fmt.Fprintf(os.Stderr, "voxfix: invalid --log-level %q\n", *logLevel)
			return 2
		}
	}
	if *rulesPath != "" {
		cfg.RulesPath = *rulesPath
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Slog()}))
	slog.SetDefault(logger)

	// ── Rule table ────────────────────────────────────────────────────────────
	table, err := loadTable(cfg.RulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxfix: %v\n", err)
		return 2
	}

	root := cfg.CorpusDir
	if fs.NArg() == 1 {
		root = fs.Arg(0)
	}

	runner := batch.New(table, os.Stdout)
	opts := batch.Options{}
	if apply != nil {
		opts.Apply = *apply
		opts.Verbose = *verbose
	}

	// ── Dispatch ──────────────────────────────────────────────────────────────
	var sum batch.Summary
	switch verb {
	case "validate":
		sum, err = runner.Validate(root)
	case "fix":
		sum, err = runner.Fix(root, opts)
	case "scrub":
		sum, err = runner.Scrub(root, opts)
	case "suggest":
		sum, err = runner.Suggest(root)
	}
	if err != nil {
		slog.Error("run failed", "command", verb, "err", err)
		return 1
	}

	return exitCode(verb, sum)
}

// exitCode derives the authoritative pass/fail signal from a run's summary.
// Validation fails on any invalid or unparseable file; correction and
// scrubbing fail only when a write failed.
func exitCode(verb string, sum batch.Summary) int {
	switch verb {
	case "validate":
		if sum.Invalid > 0 || sum.ParseErrors > 0 {
			return 1
		}
	case "fix", "scrub":
		if sum.WriteFailures > 0 {
			return 1
		}
	}
	return 0
}

// loadConfig resolves the tool configuration: an explicitly given file must
// exist; the default file is used only when present.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(defaultConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// loadTable resolves the correction rule table: a file when configured,
// the embedded curated table otherwise.
func loadTable(path string) (*rules.Table, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

func usage() {
	fmt.Fprint(os.Stderr, `voxfix - transcript corpus correction and validation

Usage:
  voxfix validate [flags] [path]   check every file against the known schemas
  voxfix fix      [flags] [path]   fix catalogued Whisper errors (dry-run by default)
  voxfix scrub    [flags] [path]   clear hallucinated text in pain/effort files
  voxfix suggest  [flags] [path]   report candidate rules for the curated table

The path defaults to the corpus_dir from voxfix.yaml, or "data".

Flags:
  --config path     YAML configuration file (default: voxfix.yaml when present)
  --rules path      rule table YAML file (default: embedded curated table)
  --log-level lvl   debug, info, warn, error
  --dry-run         fix/scrub: report changes without modifying files (default)
  --apply           fix/scrub: persist changes to disk
  --verbose         fix/scrub: print every change
`)
}
