package schema_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/MrWong99/voxfix/internal/corpus"
	"github.com/MrWong99/voxfix/internal/schema"
)

func parse(t *testing.T, input string) *corpus.Document {
	t.Helper()
	doc, err := corpus.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestValidate_ValidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		variant corpus.Variant
	}{
		{
			name: "voiceline",
			input: `{
				"voiceline_id": "wraith_kill_enemy_01",
				"timestamp": "2024-11-02T10:30:00Z",
				"segments": [
					{"start": 0, "end": 1.5, "text": "They took out Seven", "part": 0},
					{"start": 1.5, "end": 2.25, "text": "", "part": 1}
				]
			}`,
			variant: corpus.VariantVoiceline,
		},
		{
			name:    "voiceline with empty segments",
			input:   `{"voiceline_id": "x", "timestamp": "t", "segments": []}`,
			variant: corpus.VariantVoiceline,
		},
		{
			name: "simple file",
			input: `{
				"file": "wraith_pain_big_03.mp3",
				"segments": [{"start": 0.25, "end": 0.9, "text": "Ahhh!"}]
			}`,
			variant: corpus.VariantSimpleFile,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := schema.Validate(parse(t, tc.input))
			if !res.Valid() {
				t.Fatalf("Validate: unexpected defects: %v", res.Defects)
			}
			if res.Variant != tc.variant {
				t.Errorf("Variant=%q, want %q", res.Variant, tc.variant)
			}
		})
	}
}

func TestValidate_UnknownShape(t *testing.T) {
	t.Parallel()

	res := schema.Validate(parse(t, `{"segments": [], "extra": 1}`))
	if res.Variant != corpus.VariantNone {
		t.Errorf("Variant=%q, want none", res.Variant)
	}
	if len(res.Defects) != 1 {
		t.Fatalf("len(Defects)=%d, want exactly 1", len(res.Defects))
	}
	d := res.Defects[0]
	if d.Kind != schema.KindUnknownShape || d.Path != "(root)" {
		t.Errorf("Defect=%+v, want unknown_shape at (root)", d)
	}
}

// A voiceline segment without part yields exactly one defect naming part.
func TestValidate_MissingPart(t *testing.T) {
	t.Parallel()

	res := schema.Validate(parse(t, `{
		"voiceline_id": "x",
		"timestamp": "t",
		"segments": [{"start": 0, "end": 1, "text": "hello"}]
	}`))
	if len(res.Defects) != 1 {
		t.Fatalf("len(Defects)=%d, want 1: %v", len(res.Defects), res.Defects)
	}
	d := res.Defects[0]
	if d.Path != "segments[0].part" || d.Kind != schema.KindMissing {
		t.Errorf("Defect=%+v, want missing segments[0].part", d)
	}
}

// An inverted interval is suspicious, not structural, and is reported
// separately from missing-field defects.
func TestValidate_InvertedInterval(t *testing.T) {
	t.Parallel()

	res := schema.Validate(parse(t, `{
		"file": "a.mp3",
		"segments": [{"start": 5, "end": 2, "text": "backwards"}]
	}`))
	if len(res.Defects) != 1 {
		t.Fatalf("len(Defects)=%d, want 1: %v", len(res.Defects), res.Defects)
	}
	d := res.Defects[0]
	if d.Kind != schema.KindSuspicious || d.Path != "segments[0]" {
		t.Errorf("Defect=%+v, want suspicious segments[0]", d)
	}
	if !strings.Contains(d.Expected, "end >= start") {
		t.Errorf("Expected=%q, want end >= start", d.Expected)
	}
}

func TestValidate_CollectsAllDefects(t *testing.T) {
	t.Parallel()

	// Broken in several independent ways; every problem must surface in a
	// single pass.
	res := schema.Validate(parse(t, `{
		"voiceline_id": 42,
		"segments": [
			{"start": "zero", "end": 1, "part": 0},
			"not an object",
			{"start": -1, "end": 2, "text": "ok", "part": 1.5}
		]
	}`))

	wantPaths := []string{
		"voiceline_id",       // wrong type
		"timestamp",          // missing
		"segments[0].start",  // wrong type
		"segments[0].text",   // missing
		"segments[1]",        // not an object
		"segments[2].part",   // fractional
		"segments[2].start",  // negative
	}
	if len(res.Defects) != len(wantPaths) {
		t.Fatalf("len(Defects)=%d, want %d: %v", len(res.Defects), len(wantPaths), res.Defects)
	}
	got := make(map[string]bool, len(res.Defects))
	for _, d := range res.Defects {
		got[d.Path] = true
	}
	for _, p := range wantPaths {
		if !got[p] {
			t.Errorf("missing defect for %s in %v", p, res.Defects)
		}
	}
}

// Re-validating the same document yields the identical defect list.
func TestValidate_Deterministic(t *testing.T) {
	t.Parallel()

	doc := parse(t, `{
		"voiceline_id": "",
		"timestamp": 7,
		"segments": [{"start": 3, "end": 1, "text": 9, "part": -2}]
	}`)

	first := schema.Validate(doc)
	if first.Valid() {
		t.Fatal("Validate: expected defects")
	}
	for i := 0; i < 5; i++ {
		again := schema.Validate(doc)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("validation not deterministic:\n%v\n%v", first, again)
		}
	}
}

func TestValidate_WrongTypeDetails(t *testing.T) {
	t.Parallel()

	res := schema.Validate(parse(t, `{"file": "a.mp3", "segments": {"oops": true}}`))
	if len(res.Defects) != 1 {
		t.Fatalf("len(Defects)=%d, want 1: %v", len(res.Defects), res.Defects)
	}
	d := res.Defects[0]
	if d.Kind != schema.KindWrongType || d.Expected != "array" || d.Actual != "object" {
		t.Errorf("Defect=%+v, want wrong_type array/object", d)
	}
}
