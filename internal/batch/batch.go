// Package batch drives the correction and validation pipeline over a
// corpus directory tree.
//
// The driver is single-threaded and synchronous: files are discovered in
// deterministic lexicographic order, processed one at a time, and a
// per-file problem never aborts the run. The aggregated [Summary] plus the
// process exit code derived from it are the authoritative outcome of a
// run; everything printed along the way is for humans.
package batch

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MrWong99/voxfix/internal/corpus"
	"github.com/MrWong99/voxfix/internal/corrector"
	"github.com/MrWong99/voxfix/internal/rules"
	"github.com/MrWong99/voxfix/internal/schema"
	"github.com/MrWong99/voxfix/internal/scrub"
	"github.com/MrWong99/voxfix/internal/suggest"
)

// Options control a correction or scrub run.
type Options struct {
	// Apply persists changed documents back to disk. When false (the
	// default safety posture), changes are only reported.
	Apply bool

	// Verbose prints one before/after line pair per change.
	Verbose bool
}

// Summary aggregates the per-file outcomes of one run.
type Summary struct {
	// Scanned is the number of files processed.
	Scanned int

	// Valid and Invalid count validation outcomes (validate runs only).
	Valid   int
	Invalid int

	// Changed counts files with at least one corrected or cleared segment.
	Changed int

	// Cleared counts individual segments emptied by a scrub run.
	Cleared int

	// ParseErrors counts files that were unreadable or not valid JSON.
	ParseErrors int

	// WriteFailures counts apply-mode persistence failures.
	WriteFailures int

	// Unrecognized counts files matching neither known record shape that
	// were still corrected best-effort and need follow-up.
	Unrecognized int
}

// Runner executes batch passes over a corpus. Construct with [New].
type Runner struct {
	table *rules.Table
	out   io.Writer
}

// New returns a [Runner] using table for corrections and writing its
// human-readable report to out.
func New(table *rules.Table, out io.Writer) *Runner {
	return &Runner{table: table, out: out}
}

// discover returns every *.json file under root, lexicographically ordered
// by path so output is reproducible across runs.
func discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("batch: corpus path %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("batch: corpus path %q is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: walk %q: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Validate checks every corpus file against the known record shapes and
// reports each defect. The returned error is non-nil only for fatal
// problems (unusable root path); per-file defects and parse errors are in
// the Summary.
func (r *Runner) Validate(root string) (Summary, error) {
	paths, err := discover(root)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	slog.Info("validating corpus", "root", root, "files", len(paths))

	for _, path := range paths {
		sum.Scanned++
		doc, err := corpus.Load(path)
		if err != nil {
			sum.ParseErrors++
			fmt.Fprintf(r.out, "%s:\n  %v\n", path, err)
			continue
		}

		res := schema.Validate(doc)
		if res.Valid() {
			sum.Valid++
			continue
		}
		sum.Invalid++
		fmt.Fprintf(r.out, "%s (%s):\n", path, res.Variant)
		for _, d := range res.Defects {
			fmt.Fprintf(r.out, "  %s\n", d)
		}
	}

	fmt.Fprintf(r.out, "\nValidated %d files: %d valid, %d invalid, %d parse errors\n",
		sum.Scanned, sum.Valid, sum.Invalid, sum.ParseErrors)
	return sum, nil
}

// Fix runs the correction engine over every corpus file. In apply mode,
// changed documents are rewritten atomically; write failures are recorded
// per file and never abort the run.
func (r *Runner) Fix(root string, opts Options) (Summary, error) {
	paths, err := discover(root)
	if err != nil {
		return Summary{}, err
	}

	engine := corrector.New(r.table)
	var sum Summary
	slog.Info("correcting corpus", "root", root, "files", len(paths), "apply", opts.Apply)

	for _, path := range paths {
		sum.Scanned++
		doc, err := corpus.Load(path)
		if err != nil {
			sum.ParseErrors++
			slog.Warn("skipping unparseable file", "path", path, "err", err)
			continue
		}

		res := engine.CorrectDocument(doc)
		if res.Unrecognized {
			sum.Unrecognized++
			slog.Warn("file matches no known shape; corrected best-effort", "path", path)
		}
		if !res.Changed {
			continue
		}
		sum.Changed++

		if opts.Verbose || !opts.Apply {
			r.printChanges(path, res.Changes)
		}
		if opts.Apply {
			if err := doc.WriteAtomic(path); err != nil {
				sum.WriteFailures++
				slog.Error("failed to write corrected file", "path", path, "err", err)
			}
		}
	}

	r.printFixSummary(sum, opts)
	return sum, nil
}

// Scrub clears hallucinated transcriptions from non-verbal voiceline
// files. Only files whose names mark them as pain/effort sounds are
// touched; dry-run/apply semantics match [Runner.Fix].
func (r *Runner) Scrub(root string, opts Options) (Summary, error) {
	paths, err := discover(root)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	slog.Info("scrubbing non-verbal files", "root", root, "apply", opts.Apply)

	for _, path := range paths {
		if !scrub.TargetFile(filepath.Base(path)) {
			continue
		}
		sum.Scanned++
		doc, err := corpus.Load(path)
		if err != nil {
			sum.ParseErrors++
			slog.Warn("skipping unparseable file", "path", path, "err", err)
			continue
		}

		changes := scrub.ScrubDocument(doc)
		if len(changes) == 0 {
			continue
		}
		sum.Changed++
		sum.Cleared += len(changes)

		if opts.Verbose || !opts.Apply {
			for _, c := range changes {
				fmt.Fprintf(r.out, "%s segment %d:\n  - %q\n  + (cleared)\n", path, c.Segment, c.Before)
			}
		}
		if opts.Apply {
			if err := doc.WriteAtomic(path); err != nil {
				sum.WriteFailures++
				slog.Error("failed to write scrubbed file", "path", path, "err", err)
			}
		}
	}

	fmt.Fprintf(r.out, "\nScrubbed %d non-verbal files: %d changed, %d segments cleared, %d parse errors, %d write failures\n",
		sum.Scanned, sum.Changed, sum.Cleared, sum.ParseErrors, sum.WriteFailures)
	if !opts.Apply && sum.Cleared > 0 {
		fmt.Fprintln(r.out, "Dry run: no files were modified. Re-run with --apply to clear these transcriptions.")
	}
	return sum, nil
}

// Suggest scans the corpus for uncatalogued tokens phonetically close to
// known character names and prints candidate rules. Read-only.
func (r *Runner) Suggest(root string) (Summary, error) {
	paths, err := discover(root)
	if err != nil {
		return Summary{}, err
	}

	scanner := suggest.New(r.table)
	var sum Summary
	slog.Info("scanning for rule candidates", "root", root, "files", len(paths))

	for _, path := range paths {
		sum.Scanned++
		doc, err := corpus.Load(path)
		if err != nil {
			sum.ParseErrors++
			continue
		}
		segs, ok := doc.Segments()
		if !ok {
			continue
		}
		for _, raw := range segs {
			if seg, ok := raw.(map[string]any); ok {
				if text, ok := seg[corpus.KeyText].(string); ok {
					scanner.Scan(text)
				}
			}
		}
	}

	candidates := scanner.Candidates()
	for _, c := range candidates {
		fmt.Fprintf(r.out, "%-20s -> %-12s score %.2f seen %d\n", c.Token, c.Canonical, c.Score, c.Count)
	}
	fmt.Fprintf(r.out, "\nScanned %d files: %d candidate rules\n", sum.Scanned, len(candidates))
	return sum, nil
}

// printChanges emits one before/after line pair per corrected segment.
func (r *Runner) printChanges(path string, changes []corrector.Change) {
	for _, c := range changes {
		fmt.Fprintf(r.out, "%s segment %d:\n  - %s\n  + %s\n", path, c.Segment, c.Before, c.After)
	}
}

func (r *Runner) printFixSummary(sum Summary, opts Options) {
	fmt.Fprintf(r.out, "\nProcessed %d files: %d changed, %d parse errors, %d unrecognized, %d write failures\n",
		sum.Scanned, sum.Changed, sum.ParseErrors, sum.Unrecognized, sum.WriteFailures)
	if !opts.Apply && sum.Changed > 0 {
		fmt.Fprintln(r.out, "Dry run: no files were modified. Re-run with --apply to make these changes.")
	}
}
