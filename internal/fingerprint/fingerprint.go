// Package fingerprint computes content-derived identifiers for audio files.
// The fingerprint depends only on file bytes, never on name or location, so
// the same voice note re-exported under a different filename still maps to
// the same transcription record.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Fingerprint is a hex-encoded SHA-256 digest of file content.
type Fingerprint string

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// IsZero reports whether the fingerprint is empty.
func (f Fingerprint) IsZero() bool { return strings.TrimSpace(string(f)) == "" }

// Compute hashes the file at path.
func Compute(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash audio file: %w", err)
	}
	return Fingerprint(hex.EncodeToString(hasher.Sum(nil))), nil
}

// ComputeBytes hashes an in-memory payload. Identical bytes always yield the
// same fingerprint as Compute on a file holding those bytes.
func ComputeBytes(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}
