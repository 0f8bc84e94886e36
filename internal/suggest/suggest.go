// Package suggest scans corpus text for tokens that sound like a known
// character name but are not catalogued in the rule table yet.
//
// It is a maintenance aid, not a corrector: nothing is ever rewritten. The
// output is a ranked report of candidate misheard-to-canonical pairs for a
// human to review and, when confirmed, add to the curated table.
//
// Candidate detection combines Double Metaphone phonetic overlap with
// Jaro-Winkler similarity ranking, the same filter-then-rank approach the
// correction rules were originally mined with.
package suggest

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/voxfix/internal/rules"
)

const defaultThreshold = 0.80

// Candidate is one suggested rule: an uncatalogued token that is
// phonetically close to a canonical name.
type Candidate struct {
	// Token is the suspect word as found in the corpus.
	Token string

	// Canonical is the best-matching known name.
	Canonical string

	// Score is the Jaro-Winkler similarity between the two, 0.0 to 1.0.
	Score float64

	// Count is how many times the token was seen across the scan.
	Count int
}

// Option is a functional option for configuring a [Scanner].
type Option func(*Scanner)

// WithThreshold sets the minimum Jaro-Winkler score for a phonetic match to
// be reported. Default: 0.80.
func WithThreshold(t float64) Option {
	return func(s *Scanner) { s.threshold = t }
}

// Scanner accumulates candidate rules over a sequence of texts. It is a
// single-run accumulator and not safe for concurrent use.
type Scanner struct {
	canonical []string
	known     map[string]struct{}
	threshold float64

	found map[string]*Candidate
}

// New builds a [Scanner] from the rule table. Canonical names are taken
// from the table's name rules; both the canonical names and the already
// catalogued misheard tokens are excluded from suggestion.
func New(table *rules.Table, opts ...Option) *Scanner {
	s := &Scanner{
		known:     make(map[string]struct{}),
		threshold: defaultThreshold,
		found:     make(map[string]*Candidate),
	}

	seen := make(map[string]struct{})
	for _, n := range table.Names() {
		for _, w := range strings.Fields(n.Right) {
			s.known[strings.ToLower(w)] = struct{}{}
			if _, dup := seen[w]; !dup {
				seen[w] = struct{}{}
				s.canonical = append(s.canonical, w)
			}
		}
		for _, w := range strings.Fields(n.Wrong) {
			s.known[strings.ToLower(w)] = struct{}{}
		}
	}

	for _, o := range opts {
		o(s)
	}
	return s
}

// Scan examines one text, recording every capitalized unknown token that
// sounds like a canonical name.
func (s *Scanner) Scan(text string) {
	for _, field := range strings.Fields(text) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if len(token) < 3 || !startsUpper(token) {
			continue
		}
		if _, ok := s.known[strings.ToLower(token)]; ok {
			continue
		}

		canonical, score, ok := s.match(token)
		if !ok {
			continue
		}
		key := token + "\x00" + canonical
		if c, seen := s.found[key]; seen {
			c.Count++
			continue
		}
		s.found[key] = &Candidate{Token: token, Canonical: canonical, Score: score, Count: 1}
	}
}

// match finds the canonical name most similar to token. A candidate needs
// Double Metaphone overlap with the canonical name and a Jaro-Winkler score
// at or above the threshold.
func (s *Scanner) match(token string) (canonical string, score float64, ok bool) {
	tokenLower := strings.ToLower(token)
	tp, ts := matchr.DoubleMetaphone(tokenLower)

	var best Candidate
	for _, name := range s.canonical {
		nameLower := strings.ToLower(name)
		np, ns := matchr.DoubleMetaphone(nameLower)
		if !codesOverlap(tp, ts, np, ns) {
			continue
		}
		jw := matchr.JaroWinkler(tokenLower, nameLower, false)
		if jw >= s.threshold && jw > best.Score {
			best = Candidate{Canonical: name, Score: jw}
		}
	}

	if best.Canonical == "" {
		return "", 0, false
	}
	return best.Canonical, best.Score, true
}

// codesOverlap reports whether any non-empty Double Metaphone code is
// shared between the two words.
func codesOverlap(ap, as, bp, bs string) bool {
	for _, a := range [2]string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || (bs != "" && a == bs) {
			return true
		}
	}
	return false
}

// Candidates returns every suggestion recorded so far, ordered by
// occurrence count (descending), then score (descending), then token.
func (s *Scanner) Candidates() []Candidate {
	out := make([]Candidate, 0, len(s.found))
	for _, c := range s.found {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Token < out[j].Token
	})
	return out
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
