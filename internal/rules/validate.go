package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// compilePhrase compiles one phrase pattern.
func compilePhrase(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return re, nil
}

// validate enforces the table's designed invariants and returns a joined
// error listing every violation found.
//
// Invariants:
//   - No name rule's canonical output may itself be a catalogued misheard
//     token, or match another rule. Otherwise applying the table twice
//     would keep rewriting already-corrected text.
//   - No literal (capture-free) phrase replacement may match any rule, for
//     the same reason. Replacements carrying ${n} references cannot be
//     checked statically and are skipped.
//
// Together these make the full rule set idempotent: corrected canonical
// text never matches a rule's pattern again.
func (t *Table) validate() error {
	var errs []error

	for _, n := range t.names {
		if canon, ok := t.byToken[n.Right]; ok {
			errs = append(errs, fmt.Errorf("name rule %q -> %q: output is itself catalogued as misheard (-> %q)", n.Wrong, n.Right, canon))
			continue
		}
		if rule, hit := t.matchingRule(n.Right); hit {
			errs = append(errs, fmt.Errorf("name rule %q -> %q: output still matches rule %q", n.Wrong, n.Right, rule))
		}
	}

	for _, p := range t.phrases {
		if strings.Contains(p.Replace, "${") {
			continue
		}
		if rule, hit := t.matchingRule(p.Replace); hit {
			errs = append(errs, fmt.Errorf("phrase rule %q -> %q: replacement still matches rule %q", p.Pattern, p.Replace, rule))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("rules: table is not idempotent: %w", errors.Join(errs...))
}

// matchingRule reports whether text matches any phrase or name rule and
// identifies the first one that does.
func (t *Table) matchingRule(text string) (rule string, hit bool) {
	for _, p := range t.phrases {
		if p.re.MatchString(text) {
			return p.Pattern, true
		}
	}
	for _, n := range t.names {
		if n.re.MatchString(text) {
			return n.Wrong, true
		}
	}
	return "", false
}
