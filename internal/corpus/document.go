// Package corpus models the transcript JSON documents that make up the
// voiceline corpus.
//
// Every file holds exactly one document in one of two shapes:
//
//	voiceline:   {"voiceline_id": "...", "timestamp": "...", "segments": [...]}
//	simple file: {"file": "...", "segments": [...]}
//
// Documents are kept as raw decoded JSON rather than typed structs so a
// rewrite preserves every field the file carried, including ones this
// pipeline knows nothing about. Numbers are decoded as [encoding/json.Number]
// to keep their literal form across a read-modify-write cycle.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Top-level and segment field names shared by the validator and corrector.
const (
	KeyVoicelineID = "voiceline_id"
	KeyTimestamp   = "timestamp"
	KeyFile        = "file"
	KeySegments    = "segments"
	KeyStart       = "start"
	KeyEnd         = "end"
	KeyText        = "text"
	KeyPart        = "part"
)

// Variant identifies which of the known record shapes a document matches.
type Variant string

const (
	// VariantVoiceline is a document keyed by a canonical voiceline ID.
	VariantVoiceline Variant = "voiceline"

	// VariantSimpleFile is a document keyed by its source audio filename.
	VariantSimpleFile Variant = "simple-file"

	// VariantNone means the document matches neither known shape.
	VariantNone Variant = "none"
)

// ErrRootNotObject is returned by [Parse] when the file holds valid JSON
// whose root value is not an object.
var ErrRootNotObject = errors.New("json root must be an object")

// Document is one parsed transcript file.
type Document struct {
	root map[string]any
}

// Parse decodes a single UTF-8 JSON transcript document from data.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("corpus: invalid json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("corpus: invalid json: trailing data after document")
	}

	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("corpus: %w", ErrRootNotObject)
	}
	return &Document{root: root}, nil
}

// Load reads and parses the transcript document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %q: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return doc, nil
}

// Root exposes the decoded JSON object. Callers may mutate values in place
// (the corrector rewrites segment text this way) but must not assume any
// field exists.
func (d *Document) Root() map[string]any { return d.root }

// Classify reports which known record shape the document matches. A
// voiceline_id key selects the voiceline variant even when a file key is
// also present, so the result is always exactly one variant.
func (d *Document) Classify() Variant {
	if _, ok := d.root[KeyVoicelineID]; ok {
		return VariantVoiceline
	}
	if _, ok := d.root[KeyFile]; ok {
		return VariantSimpleFile
	}
	return VariantNone
}

// Segments returns the raw segments array, or ok=false when the document has
// no segments key or it is not an array. This works for unknown shapes too,
// enabling best-effort correction.
func (d *Document) Segments() (segs []any, ok bool) {
	segs, ok = d.root[KeySegments].([]any)
	return segs, ok
}

// Encode serializes the document with two-space indentation, unescaped
// text, and a trailing newline, the corpus' canonical on-disk form.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("corpus: encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteAtomic persists the document to path with atomic replace semantics:
// the document is written to a temporary file in the same directory and
// renamed over the original, so a crash mid-write never corrupts the file.
func (d *Document) WriteAtomic(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".voxfix-*.json")
	if err != nil {
		return fmt.Errorf("corpus: create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("corpus: write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("corpus: close %q: %w", tmpName, err)
	}

	// Keep the original file's permissions when it already exists.
	if info, err := os.Stat(path); err == nil {
		os.Chmod(tmpName, info.Mode().Perm())
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("corpus: replace %q: %w", path, err)
	}
	return nil
}
