// Package corrector applies the correction rule table to transcript
// documents, producing an itemised change record per segment.
//
// Correction is purely mechanical: phrase rules run first (in table order),
// then name rules. Text that matches no rule passes through untouched, and
// because the table is validated to be idempotent, running the engine over
// already-corrected text yields no further changes.
package corrector

import (
	"github.com/MrWong99/voxfix/internal/corpus"
	"github.com/MrWong99/voxfix/internal/rules"
)

// Change records the rewrite of one segment's text field.
type Change struct {
	// Segment is the index of the segment within the document.
	Segment int

	// Before is the segment text as read from the file.
	Before string

	// After is the corrected segment text.
	After string

	// Matches itemises each rule application that contributed to After.
	Matches []rules.Match
}

// Result aggregates all segment corrections for one document.
type Result struct {
	// Changes lists every segment whose text was rewritten, in segment
	// order. Empty when the document needed no correction.
	Changes []Change

	// Changed is true when at least one segment was rewritten.
	Changed bool

	// Unrecognized is true when the document matched neither known record
	// shape. Such documents are still corrected on whatever segments array
	// they carry, but are flagged for follow-up in the summary.
	Unrecognized bool
}

// Engine applies a rule table to transcript text. It is stateless apart
// from the immutable table and safe for concurrent use.
type Engine struct {
	table *rules.Table
}

// New returns an [Engine] backed by table. The table is used as-is and must
// not be mutated afterwards.
func New(table *rules.Table) *Engine {
	return &Engine{table: table}
}

// CorrectText runs the full rule set over a single text field: phrase rules
// in table order, then name rules. The returned matches itemise every
// substitution; when no rule fires, the text is returned unchanged with no
// matches.
func (e *Engine) CorrectText(text string) (string, []rules.Match) {
	fixed, matches := e.table.ApplyPhraseRules(text)
	fixed, nameMatches := e.table.ApplyNameRules(fixed)
	return fixed, append(matches, nameMatches...)
}

// CorrectDocument corrects every segment text in doc in place and returns
// the aggregated [Result]. Only the in-memory document is touched; whether
// the rewrite is persisted is the caller's decision (dry-run versus apply).
//
// Documents without a segments array, or with segments that are not
// objects or lack a string text field, produce an empty result rather
// than an error; validation is the schema package's job.
func (e *Engine) CorrectDocument(doc *corpus.Document) *Result {
	result := &Result{
		Unrecognized: doc.Classify() == corpus.VariantNone,
	}

	segs, ok := doc.Segments()
	if !ok {
		return result
	}

	for i, raw := range segs {
		seg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		text, ok := seg[corpus.KeyText].(string)
		if !ok {
			continue
		}

		fixed, matches := e.CorrectText(text)
		if fixed == text {
			continue
		}

		seg[corpus.KeyText] = fixed
		result.Changes = append(result.Changes, Change{
			Segment: i,
			Before:  text,
			After:   fixed,
			Matches: matches,
		})
		result.Changed = true
	}

	return result
}
