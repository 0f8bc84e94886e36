// Package scrub clears hallucinated Whisper transcriptions from non-verbal
// voiceline files.
//
// Whisper invents text for screams, groans, and grunts: YouTube-style
// calls to action, transcription-service boilerplate, URLs, copyright
// notices, or plain gibberish. Files whose names mark them as pain/effort
// sounds are scanned and any segment text recognised as a hallucination is
// cleared to the empty string. Genuine scream spellings ("Ahhh!", "Gah!",
// "Hmph!") are kept via an allow-list checked first.
package scrub

import (
	"regexp"
	"strings"

	"github.com/MrWong99/voxfix/internal/corpus"
)

// nonverbalFilePatterns mark files containing screams/groans rather than
// dialogue. low_health_warning is deliberately absent: those lines may
// carry real speech.
var nonverbalFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`_pain_big_`),
	regexp.MustCompile(`_pain_small_`),
	regexp.MustCompile(`_pain_death_`),
	regexp.MustCompile(`_pain_akira_laser_`),
	regexp.MustCompile(`_effort_`),
}

// validScreamPatterns are spellings of genuine non-verbal sounds that must
// survive scrubbing.
var validScreamPatterns = compileAll(
	`^[AaUuOoEe]+[HhGgRr]*[!\.]*$`,        // Ahhh!, Ugh!
	`^(G|D'?)?[AaUuOo]+[HhGgRr]*[!\.]*$`,  // Gah!, Doh!
	`^[Hh]+[IiYyAaUu]+[AaHh]*[!\.]*$`,     // Hyah!, Hiyah!
	`^(Ny|N)[AaEeUu]+[Hh]*[!\.]*$`,        // Nyeh!, Nah!
	`^[Oo]+[FfOo]+[!\.]*$`,                // Oof!, Off!
	`^[Bb]+[AaLlRrUu]+[GgHhRr]*[!\.]*$`,   // Bah!, Blargh!, Bruh!
	`^[Rr]+[AaOo]+[Ww]*[Rr]*[!\.]*$`,      // Rawr!, Roar!
	`^[Mm]+[Ww]*[Aa]+[Hh]*[!\.]*$`,        // Mwah!
	`^[Hh]+[Mm]+[Pp]*[Hh]*[Ff]*[!\.]*$`,   // Hmph!, Hmm
	`^[Yy]+[Ee]*[Aa]+[Hh]*[!\.]*$`,        // Yeah!
	`^[Nn]+[Oo]+[!\.]*$`,                  // Nooo!
	`^[Oo]+[Ww]+[!\.]*$`,                  // Ow!
	`^[Hh]+[Uu]+[Hh]*[!\.]*$`,             // Huh!
	`^[Ss]+[Ee]+[Ee]*[Yy]*[Aa]*[!\.]*$`,   // See ya!
	`^[Bb]+[Oo]+[Oo]*[Ff]*[!\.]*$`,        // Boof!, Boo!
	`^[Gg]+[Rr]+[Rr]*[!\.]*$`,             // GRR!
)

// hallucinationPatterns flag text that cannot be a scream. Matched
// case-insensitively anywhere in the text.
var hallucinationPatterns = compileAll(
	// YouTube/social media CTAs
	`(?i)thank\s*(you|u)\s*(for)?\s*watching`,
	`(?i)thanks\s*(for)?\s*watching`,
	`(?i)subscri(be|b|ption)`,
	`(?i)like.*comment.*subscri`,
	`(?i)don'?t\s*forget\s*to`,
	`(?i)leave\s*a\s*comment`,
	`(?i)next\s*video`,
	`(?i)previous\s*video`,
	`(?i)see\s*you\s*in\s*the`,
	`(?i)hope\s*you\s*enjoy`,
	`(?i)enjoy\s*the\s*video`,
	`(?i)click\s*(on|the|here)`,
	`(?i)notification`,
	`(?i)channel`,
	`(?i)patreon`,
	`(?i)please\s*like`,
	`(?i)link\s*in\s*(the)?\s*description`,

	// Transcription service artifacts
	`(?i)transcription\s*(by|is|has|service)`,
	`(?i)translation\s*(by|is)`,
	`(?i)subs?\s*by`,
	`(?i)subtitle`,
	`(?i)casting\s*words`,
	`(?i)do\s*not\s*include\s*extra\s*whitespace`,
	`(?i)ambiguous\s*transcription`,
	`(?i)transcription\s*sting`,

	// Website/URL references
	`(?i)http[s]?://`,
	`(?i)www\.`,
	`(?i)\.com`,
	`(?i)\.co\.uk`,
	`(?i)\.org`,
	`(?i)\.net`,
	`(?i)\.au`,
	`(?i)sites\.google`,
	`(?i)youtube`,
	`(?i)tinyurl`,
	`(?i)slidespot`,
	`(?i)pissedconsumer`,

	// Copyright/legal text
	`©`,
	`(?i)copyright`,
	`(?i)all\s*rights\s*reserved`,
	`(?i)trademark`,
	`(?i)disney`,
	`(?i)all\s*characters.*fictitious`,
	`(?i)disclaimer`,
	`(?i)used\s*by\s*permission`,

	// Generic filler that makes no sense for a scream
	`(?i)to\s*be\s*continued`,
	`(?i)the\s*end\.?$`,
	`(?i)^game\s*over$`,
	`(?i)first\s*person\s*videos?`,
	`(?i)chapter\s*\d`,
	`(?i)episode\s*\d`,
	`(?i)part\s*\d`,
	`(?i)^available\s*(now|at|for)`,

	// Non-Latin scripts and symbol runs
	`\p{Cyrillic}{3,}`,
	`\p{Hangul}{2,}`,
	`[\p{Hiragana}\p{Katakana}]{3,}`,
	`\p{Han}{2,}`,
	`(?i)éhéhé`,
	`[\x{1F170}-\x{1F18F}]`, // squared-letter emoji
	`[►◄▲▼]{2,}`,

	// Instructional/meta text
	`(?i)if\s*you\s*(find|have|did|enjoyed)`,
	`(?i)please\s*(see|click|post|leave)`,
	`(?i)questions?\s*(or|and)?\s*(comments?|problems?)`,
	`(?i)comments?\s*section`,
	`(?i)classroom\s*footage`,
	`(?i)save\s*it\s*in\s*your`,

	// Specific hallucinations found in the corpus
	`(?i)horse\s*neighs`,
	`(?i)teenage\s*girl\s*screams`,
	`(?i)awkward\s*silence`,
	`(?i)scream\s*song`,
	`(?i)u\.?s\.?\s*money\s*reserve`,
	`(?i)rhyme\s*films`,
	`(?i)bloopers?`,
	`(?i)off\s*camera`,
	`(?i)available.*free`,
	`(?i)weltwerk`,
	`(?i)behaviour`,
	`(?i)answers?\s*this\s*question`,
	`(?i)perfect\s*for\s*that\s*purpose`,
	`(?i)keep\s*the\s*video`,
	`(?i)children'?s\s*charity`,
	`(?i)amogus`,
	`(?i)control$`,
	`(?i)^grunt$`,
	`(?i)^cough$`,
	`(?i)\*\*?(burp|fart|yawn|sigh|groan|grunt|shiver)\*\*?`,
	`(?i)\(\*(burp|fart|yawn|sigh|groan|grunt|shiver|horse)\*\)`,
)

// punctuationOnly matches text consisting solely of digits, whitespace, and
// punctuation, never a real transcription.
var punctuationOnly = regexp.MustCompile(`^[\s\d.,?!\-/~•=]+$`)

// maxScreamWords is the longest plausible scream; anything wordier in a
// non-verbal file is treated as hallucinated.
const maxScreamWords = 5

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// TargetFile reports whether the named file holds non-verbal sounds and
// should be scrubbed at all.
func TargetFile(name string) bool {
	for _, re := range nonverbalFilePatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Hallucinated reports whether text is a Whisper hallucination rather than
// a genuine scream or groan transcription.
func Hallucinated(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	for _, re := range validScreamPatterns {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range hallucinationPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	if punctuationOnly.MatchString(text) {
		return true
	}
	return len(strings.Fields(text)) > maxScreamWords
}

// Change records one cleared segment.
type Change struct {
	// Segment is the index of the segment within the document.
	Segment int

	// Before is the hallucinated text that was cleared.
	Before string
}

// ScrubDocument clears every hallucinated segment text in doc in place and
// returns the list of cleared segments. The caller decides whether the
// modified document is persisted.
func ScrubDocument(doc *corpus.Document) []Change {
	segs, ok := doc.Segments()
	if !ok {
		return nil
	}

	var changes []Change
	for i, raw := range segs {
		seg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		text, ok := seg[corpus.KeyText].(string)
		if !ok || !Hallucinated(text) {
			continue
		}
		seg[corpus.KeyText] = ""
		changes = append(changes, Change{Segment: i, Before: text})
	}
	return changes
}
