package corpus_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/MrWong99/voxfix/internal/corpus"
)

const voicelineJSON = `{
  "voiceline_id": "wraith_kill_enemy_01",
  "timestamp": "2024-11-02T10:30:00Z",
  "segments": [
    {"start": 0, "end": 1.5, "text": "They took out Seven", "part": 0}
  ]
}`

const simpleFileJSON = `{
  "file": "wraith_pain_big_03.mp3",
  "segments": [
    {"start": 0.25, "end": 0.9, "text": "Ahhh!"}
  ]
}`

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "{nope"},
		{name: "trailing data", input: `{"file": "a.mp3"} {"file": "b.mp3"}`},
		{name: "root is array", input: `[1, 2]`},
		{name: "root is string", input: `"hello"`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := corpus.Parse([]byte(tc.input)); err == nil {
				t.Fatal("Parse: expected error, got nil")
			}
		})
	}

	_, err := corpus.Parse([]byte(`42`))
	if !errors.Is(err, corpus.ErrRootNotObject) {
		t.Errorf("Parse(42): err=%v, want ErrRootNotObject", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  corpus.Variant
	}{
		{name: "voiceline", input: voicelineJSON, want: corpus.VariantVoiceline},
		{name: "simple file", input: simpleFileJSON, want: corpus.VariantSimpleFile},
		{name: "neither", input: `{"segments": []}`, want: corpus.VariantNone},
		{
			// voiceline_id wins over file when both are present, so exactly
			// one variant is ever selected.
			name:  "both keys",
			input: `{"voiceline_id": "x", "file": "y.mp3", "segments": []}`,
			want:  corpus.VariantVoiceline,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc, err := corpus.Parse([]byte(tc.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := doc.Classify(); got != tc.want {
				t.Errorf("Classify()=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestSegments_BestEffort(t *testing.T) {
	t.Parallel()

	doc, err := corpus.Parse([]byte(`{"whatever": true, "segments": [{"text": "hi"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	segs, ok := doc.Segments()
	if !ok || len(segs) != 1 {
		t.Errorf("Segments()=(%d,%v), want 1 segment even for unknown shape", len(segs), ok)
	}

	doc, err = corpus.Parse([]byte(`{"segments": "not an array"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := doc.Segments(); ok {
		t.Error("Segments(): expected ok=false for non-array segments")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := corpus.Parse([]byte(voicelineJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !strings.HasSuffix(string(data), "\n") {
		t.Error("Encode: missing trailing newline")
	}
	if !strings.Contains(string(data), "  \"segments\"") {
		t.Error("Encode: expected two-space indentation")
	}

	// Field-for-field equality after a decode/encode cycle; only formatting
	// may differ.
	doc2, err := corpus.Parse(data)
	if err != nil {
		t.Fatalf("Parse(re-encoded): %v", err)
	}
	if !reflect.DeepEqual(doc.Root(), doc2.Root()) {
		t.Errorf("round-trip mismatch:\n%v\n%v", doc.Root(), doc2.Root())
	}
}

func TestEncode_NoHTMLEscaping(t *testing.T) {
	t.Parallel()

	doc, err := corpus.Parse([]byte(`{"file": "a.mp3", "segments": [{"start": 0, "end": 1, "text": "Wraith's <here> & gone"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), "Wraith's <here> & gone") {
		t.Errorf("Encode escaped text:\n%s", data)
	}
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "line.json")
	if err := os.WriteFile(path, []byte(voicelineJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := corpus.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	doc.Root()["timestamp"] = "2025-01-01T00:00:00Z"

	if err := doc.WriteAtomic(path); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	reread, err := corpus.Load(path)
	if err != nil {
		t.Fatalf("Load after write: %v", err)
	}
	if got := reread.Root()["timestamp"]; got != "2025-01-01T00:00:00Z" {
		t.Errorf("timestamp=%v, want rewritten value", got)
	}

	// No temp file debris.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries after write, want 1", len(entries))
	}
}
