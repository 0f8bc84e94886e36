package rules

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// default.yaml is the curated correction table shipped with the tool. It is
// versioned alongside the code so corrections can be audited and extended
// without touching engine logic.
//
//go:embed default.yaml
var defaultTableYAML []byte

// File is the on-disk YAML structure of a rule table.
//
// Example:
//
//	phrases:
//	  - pattern: 'Stun and Furnace\b'
//	    replace: Stun Infernus
//	names:
//	  - wrong: Dormin
//	    right: Doorman
type File struct {
	// Phrases are applied first, in file order. Earlier rules win when
	// patterns overlap on the same text.
	Phrases []PhraseEntry `yaml:"phrases"`

	// Names are whole-word token substitutions applied after the phrase
	// pass. Order does not affect output.
	Names []NameEntry `yaml:"names"`
}

// PhraseEntry is one phrase rule as written in a rule file.
type PhraseEntry struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// NameEntry is one name rule as written in a rule file.
type NameEntry struct {
	Wrong string `yaml:"wrong"`
	Right string `yaml:"right"`
}

// Default returns the table compiled from the embedded curated rule set.
// It panics only if the shipped data is broken, which is covered by tests.
func Default() *Table {
	t, err := LoadFromReader(strings.NewReader(string(defaultTableYAML)))
	if err != nil {
		panic(fmt.Sprintf("rules: embedded default table is invalid: %v", err))
	}
	return t
}

// Load reads, compiles, and validates the rule table YAML file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("rules: parse %q: %w", path, err)
	}
	return t, nil
}

// LoadFromReader decodes rule table YAML from r, compiles it, and validates
// the result. Useful in tests where tables are constructed from string
// literals.
func LoadFromReader(r io.Reader) (*Table, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("rules: decode yaml: %w", err)
	}
	return Compile(&file)
}

// Compile turns a parsed rule [File] into an immutable [Table]. Patterns are
// compiled and the table is checked against the coherence and idempotence
// invariants; any violation fails compilation.
func Compile(file *File) (*Table, error) {
	if file == nil {
		return nil, fmt.Errorf("rules: file must not be nil")
	}

	t := &Table{
		phrases: make([]PhraseRule, 0, len(file.Phrases)),
		names:   make([]NameRule, 0, len(file.Names)),
		byToken: make(map[string]string, len(file.Names)),
	}

	for i, e := range file.Phrases {
		if e.Pattern == "" {
			return nil, fmt.Errorf("rules: phrases[%d]: pattern must not be empty", i)
		}
		re, err := compilePhrase(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules: phrases[%d]: %w", i, err)
		}
		t.phrases = append(t.phrases, PhraseRule{Pattern: e.Pattern, Replace: e.Replace, re: re})
	}

	for i, e := range file.Names {
		if e.Wrong == "" || e.Right == "" {
			return nil, fmt.Errorf("rules: names[%d]: wrong and right must not be empty", i)
		}
		if prev, dup := t.byToken[e.Wrong]; dup {
			return nil, fmt.Errorf("rules: names[%d]: token %q already maps to %q", i, e.Wrong, prev)
		}
		re, err := nameRulePattern(e.Wrong)
		if err != nil {
			return nil, fmt.Errorf("rules: names[%d]: %w", i, err)
		}
		t.names = append(t.names, NameRule{Wrong: e.Wrong, Right: e.Right, re: re})
		t.byToken[e.Wrong] = e.Right
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}
