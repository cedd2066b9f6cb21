// Package identifier extracts normalized join keys from audio filenames.
//
// Converted audio files and transcript references frequently disagree on the
// surrounding name (direction prefixes, extensions, re-export suffixes) while
// sharing an embedded UUID. The extraction rule is deliberately narrow: the
// first UUID-shaped token of the case-folded, NFC-normalized filename,
// validated as a real UUID. An extracted identifier is always a fallback join
// key, never authoritative on its own.
package identifier

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// Normalize lowercases and NFC-normalizes a filename so byte-level encoding
// drift (macOS NFD exports, uppercase hex) does not defeat matching.
func Normalize(name string) string {
	folded := cases.Fold().String(strings.TrimSpace(name))
	return norm.NFC.String(folded)
}

// Extract returns the first UUID-shaped token found in name, normalized, and
// true on success. Tokens that look UUID-shaped but fail strict parsing are
// rejected.
func Extract(name string) (string, bool) {
	normalized := Normalize(name)
	for _, candidate := range uuidPattern.FindAllString(normalized, -1) {
		if _, err := uuid.Parse(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
