// Package rules holds the correction rule table used to fix systematic
// Whisper transcription errors in voiceline transcripts.
//
// The table has two layers, applied in this order:
//
//  1. Phrase rules: ordered (pattern, replacement) pairs. Patterns are
//     regular expressions and may carry capture groups referenced from the
//     replacement. Rules run sequentially against the current state of the
//     text, so earlier rules take precedence when patterns overlap and later
//     rules see the effects of earlier ones.
//
//  2. Name rules: whole-word substitutions of a catalogued misheard token by
//     its canonical character or term name. Lookup is case-sensitive and
//     exact; there is no fuzzy matching. Name rules have set semantics:
//     their relative order never changes the output.
//
// A [Table] is constructed once at startup, validated, and treated as
// immutable afterwards. It is safe for concurrent use.
package rules

import (
	"fmt"
	"regexp"
)

// NameRule maps one catalogued misheard token to its canonical name.
type NameRule struct {
	// Wrong is the misrecognized token exactly as it appears in transcripts.
	Wrong string

	// Right is the canonical replacement.
	Right string

	re *regexp.Regexp
}

// PhraseRule is one ordered pattern-to-replacement correction operating on
// multi-word spans.
type PhraseRule struct {
	// Pattern is the regular expression source as catalogued.
	Pattern string

	// Replace is the replacement text. It may reference capture groups from
	// Pattern using ${n} syntax.
	Replace string

	re *regexp.Regexp
}

// Match records one rule application inside a text.
type Match struct {
	// Before is the span of text the rule matched.
	Before string

	// After is the text the span was replaced with.
	After string

	// Rule identifies the rule that fired: the pattern source for phrase
	// rules, the misheard token for name rules.
	Rule string
}

// Table is the immutable correction rule table. Construct one with
// [Compile], [Load], or [Default]; never mutate it afterwards.
type Table struct {
	phrases []PhraseRule
	names   []NameRule
	byToken map[string]string
}

// Phrases returns the ordered phrase rules. The returned slice must not be
// modified.
func (t *Table) Phrases() []PhraseRule { return t.phrases }

// Names returns the name rules in file order. The returned slice must not be
// modified.
func (t *Table) Names() []NameRule { return t.names }

// LookupName returns the canonical name for the exact misheard token, or
// ok=false when the token is not catalogued. Lookup is case-sensitive.
func (t *Table) LookupName(token string) (canonical string, ok bool) {
	canonical, ok = t.byToken[token]
	return canonical, ok
}

// ApplyPhraseRules applies every phrase rule in table order to text and
// returns the resulting text together with a record of each replacement
// made. Each rule is matched against the text as transformed by the rules
// before it.
func (t *Table) ApplyPhraseRules(text string) (string, []Match) {
	var matches []Match
	for _, r := range t.phrases {
		text, matches = applyRule(text, r.re, r.Replace, r.Pattern, matches)
	}
	return text, matches
}

// ApplyNameRules applies every name rule to text as a whole-word,
// case-sensitive substitution and returns the resulting text together with a
// record of each replacement made.
func (t *Table) ApplyNameRules(text string) (string, []Match) {
	var matches []Match
	for _, r := range t.names {
		text, matches = applyRule(text, r.re, r.Right, r.Wrong, matches)
	}
	return text, matches
}

// applyRule performs one rule's substitution over text, appending a [Match]
// per occurrence. The per-occurrence replacement is expanded individually so
// capture group references resolve correctly in the change record.
func applyRule(text string, re *regexp.Regexp, replace, ruleID string, matches []Match) (string, []Match) {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text, matches
	}
	for _, loc := range locs {
		before := text[loc[0]:loc[1]]
		after := string(re.ExpandString(nil, replace, text, loc))
		matches = append(matches, Match{Before: before, After: after, Rule: ruleID})
	}
	return re.ReplaceAllString(text, replace), matches
}

// nameRulePattern builds the whole-word regular expression for a misheard
// token. The token itself is matched literally.
func nameRulePattern(token string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(token) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("rules: name rule %q: %w", token, err)
	}
	return re, nil
}
