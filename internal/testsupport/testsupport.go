// Package testsupport provides shared fixtures for voxmerge tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voxmerge/internal/config"
	"voxmerge/internal/namemap"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The archive and output directories exist when it returns.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RegistryPath = filepath.Join(base, "output", "registry.json")
	cfg.Consolidate.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}

	for _, dir := range []string{cfg.Paths.ArchiveDir, cfg.Paths.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return &cfg
}

// WithConsolidation enables rollup generation with the given owner.
func WithConsolidation(ownerName string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Consolidate.Enabled = true
		cfg.Consolidate.ReceivedOnly = true
		cfg.Consolidate.OwnerName = ownerName
	}
}

// WriteContact creates a contact directory with a transcript and optional
// mapping entries, returning the directory path.
func WriteContact(t testing.TB, cfg *config.Config, contact, transcript string, entries []namemap.Entry) string {
	t.Helper()

	contactDir := filepath.Join(cfg.Paths.ArchiveDir, contact)
	if err := os.MkdirAll(contactDir, 0o755); err != nil {
		t.Fatalf("mkdir contact %s: %v", contact, err)
	}
	transcriptPath := filepath.Join(contactDir, cfg.Merge.TranscriptName)
	if err := os.WriteFile(transcriptPath, []byte(transcript), 0o644); err != nil {
		t.Fatalf("write transcript for %s: %v", contact, err)
	}
	if entries != nil {
		if err := namemap.Save(contactDir, entries); err != nil {
			t.Fatalf("write mapping for %s: %v", contact, err)
		}
	}
	return contactDir
}

// Text returns a pointer to a transcription string for mapping entries.
func Text(s string) *string { return &s }
