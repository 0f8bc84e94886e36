// Package schema validates transcript documents against the two known
// corpus record shapes and reports every structural defect it finds.
//
// Validation never short-circuits on the first problem: all defects for a
// file are collected in one deterministic pass so a single run surfaces
// everything. Defects come in two flavours: structural ones (missing
// field, wrong type, unrecognized shape) and suspicious ones (inverted
// start/end interval, negative values, empty identifiers), so reports can
// distinguish "malformed" from "dubious but parseable".
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/MrWong99/voxfix/internal/corpus"
)

// Kind classifies a [Defect].
type Kind string

const (
	// KindMissing marks a required field that is absent.
	KindMissing Kind = "missing"

	// KindWrongType marks a field present with the wrong JSON type.
	KindWrongType Kind = "wrong_type"

	// KindUnknownShape marks a document matching neither known record shape.
	KindUnknownShape Kind = "unknown_shape"

	// KindSuspicious marks a structurally valid value that is semantically
	// dubious, such as an end time before its start time.
	KindSuspicious Kind = "suspicious"
)

// Defect is one specific structural non-conformance found in a document.
type Defect struct {
	// Path locates the offending field, e.g. "segments[3].part".
	Path string

	// Kind classifies the defect.
	Kind Kind

	// Expected describes the required type or shape.
	Expected string

	// Actual describes the value actually found.
	Actual string
}

func (d Defect) String() string {
	return fmt.Sprintf("%s: %s: expected %s, got %s", d.Path, d.Kind, d.Expected, d.Actual)
}

// Result is the validation outcome for one document.
type Result struct {
	// Variant is the record shape the document was validated against, or
	// [corpus.VariantNone] when it matched neither.
	Variant corpus.Variant

	// Defects lists every problem found, in deterministic order. Empty
	// means the document is valid.
	Defects []Defect
}

// Valid reports whether the document had zero defects.
func (r Result) Valid() bool { return len(r.Defects) == 0 }

// Validate classifies doc and checks it exhaustively against the selected
// record shape. Re-validating the same document always yields the identical
// defect list.
func Validate(doc *corpus.Document) Result {
	root := doc.Root()
	variant := doc.Classify()

	v := &visitor{}
	switch variant {
	case corpus.VariantVoiceline:
		v.requireString(root, corpus.KeyVoicelineID, true)
		v.requireString(root, corpus.KeyTimestamp, false)
		v.checkSegments(root, true)
	case corpus.VariantSimpleFile:
		v.requireString(root, corpus.KeyFile, true)
		v.checkSegments(root, false)
	default:
		v.add(Defect{
			Path:     "(root)",
			Kind:     KindUnknownShape,
			Expected: fmt.Sprintf("object with %q or %q", corpus.KeyVoicelineID, corpus.KeyFile),
			Actual:   describeKeys(root),
		})
	}

	return Result{Variant: variant, Defects: v.defects}
}

type visitor struct {
	defects []Defect
}

func (v *visitor) add(d Defect) { v.defects = append(v.defects, d) }

// requireString checks a required top-level string field. When nonEmpty is
// set, an empty value is flagged as suspicious rather than structural.
func (v *visitor) requireString(root map[string]any, key string, nonEmpty bool) {
	raw, ok := root[key]
	if !ok {
		v.add(Defect{Path: key, Kind: KindMissing, Expected: "string", Actual: "missing"})
		return
	}
	s, ok := raw.(string)
	if !ok {
		v.add(Defect{Path: key, Kind: KindWrongType, Expected: "string", Actual: describe(raw)})
		return
	}
	if nonEmpty && s == "" {
		v.add(Defect{Path: key, Kind: KindSuspicious, Expected: "non-empty string", Actual: `string ""`})
	}
}

// checkSegments validates the segments array. withPart selects the
// voiceline segment shape, which additionally requires an integral part.
func (v *visitor) checkSegments(root map[string]any, withPart bool) {
	raw, ok := root[corpus.KeySegments]
	if !ok {
		v.add(Defect{Path: corpus.KeySegments, Kind: KindMissing, Expected: "array", Actual: "missing"})
		return
	}
	segs, ok := raw.([]any)
	if !ok {
		v.add(Defect{Path: corpus.KeySegments, Kind: KindWrongType, Expected: "array", Actual: describe(raw)})
		return
	}

	for i, rawSeg := range segs {
		path := fmt.Sprintf("%s[%d]", corpus.KeySegments, i)
		seg, ok := rawSeg.(map[string]any)
		if !ok {
			v.add(Defect{Path: path, Kind: KindWrongType, Expected: "object", Actual: describe(rawSeg)})
			continue
		}
		v.checkSegment(path, seg, withPart)
	}
}

func (v *visitor) checkSegment(path string, seg map[string]any, withPart bool) {
	start, startOK := v.requireNumber(seg, path, corpus.KeyStart)
	end, endOK := v.requireNumber(seg, path, corpus.KeyEnd)

	if raw, ok := seg[corpus.KeyText]; !ok {
		v.add(Defect{Path: path + "." + corpus.KeyText, Kind: KindMissing, Expected: "string", Actual: "missing"})
	} else if _, ok := raw.(string); !ok {
		v.add(Defect{Path: path + "." + corpus.KeyText, Kind: KindWrongType, Expected: "string", Actual: describe(raw)})
	}

	if withPart {
		v.requirePart(seg, path)
	}

	// Interval sanity. Reported as suspicious, not structural: the segment
	// parses fine and correction can still run over it.
	if startOK && start < 0 {
		v.add(Defect{
			Path:     path + "." + corpus.KeyStart,
			Kind:     KindSuspicious,
			Expected: "number >= 0",
			Actual:   fmt.Sprintf("number %v", start),
		})
	}
	if startOK && endOK && end < start {
		v.add(Defect{
			Path:     path,
			Kind:     KindSuspicious,
			Expected: "end >= start",
			Actual:   fmt.Sprintf("start %v, end %v", start, end),
		})
	}
}

// requireNumber checks one numeric segment field and returns its value for
// the interval checks.
func (v *visitor) requireNumber(seg map[string]any, path, key string) (float64, bool) {
	fieldPath := path + "." + key
	raw, ok := seg[key]
	if !ok {
		v.add(Defect{Path: fieldPath, Kind: KindMissing, Expected: "number", Actual: "missing"})
		return 0, false
	}
	num, ok := raw.(json.Number)
	if !ok {
		v.add(Defect{Path: fieldPath, Kind: KindWrongType, Expected: "number", Actual: describe(raw)})
		return 0, false
	}
	f, err := num.Float64()
	if err != nil {
		v.add(Defect{Path: fieldPath, Kind: KindWrongType, Expected: "number", Actual: describe(raw)})
		return 0, false
	}
	return f, true
}

// requirePart checks the voiceline-only part field: an integer >= 0.
func (v *visitor) requirePart(seg map[string]any, path string) {
	fieldPath := path + "." + corpus.KeyPart
	raw, ok := seg[corpus.KeyPart]
	if !ok {
		v.add(Defect{Path: fieldPath, Kind: KindMissing, Expected: "integer", Actual: "missing"})
		return
	}
	num, ok := raw.(json.Number)
	if !ok {
		v.add(Defect{Path: fieldPath, Kind: KindWrongType, Expected: "integer", Actual: describe(raw)})
		return
	}
	n, err := num.Int64()
	if err != nil {
		v.add(Defect{Path: fieldPath, Kind: KindWrongType, Expected: "integer", Actual: "number " + num.String()})
		return
	}
	if n < 0 {
		v.add(Defect{Path: fieldPath, Kind: KindSuspicious, Expected: "integer >= 0", Actual: "number " + num.String()})
	}
}

// describe renders a JSON value's type and an abbreviated form of its
// content for defect reports.
func describe(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		if len(val) > 40 {
			val = val[:40] + "…"
		}
		return fmt.Sprintf("string %q", val)
	case json.Number:
		return "number " + val.String()
	case bool:
		return fmt.Sprintf("bool %v", val)
	case []any:
		return fmt.Sprintf("array of %d", len(val))
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// describeKeys lists an object's top-level keys in sorted order.
func describeKeys(root map[string]any) string {
	if len(root) == 0 {
		return "object with no keys"
	}
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "object with keys " + strings.Join(keys, ", ")
}
