package namemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"voxmerge/internal/fingerprint"
	"voxmerge/internal/identifier"
	"voxmerge/internal/logging"
)

// Entry links a converted audio filename to its transcription or fingerprint.
// Produced by the conversion/transcription stage; the merge stage matches by
// name-derived keys because it has no access to raw audio bytes.
type Entry struct {
	// ConvertedName is the audio filename as written by the conversion stage.
	ConvertedName string
	// Transcription holds inline text when the pipeline captured it alongside
	// the mapping. Nil means "not captured here"; empty string means the
	// service returned an empty transcription.
	Transcription *string
	// Fingerprint refers into the transcription registry when set.
	Fingerprint fingerprint.Fingerprint
	// Identifier is the extracted fallback join key, empty when the name
	// carries none.
	Identifier string
}

type entryJSON struct {
	Transcription *string `json:"transcription,omitempty"`
	Fingerprint   string  `json:"fingerprint,omitempty"`
}

// MappingFilePattern matches the primary mapping file and legacy variants
// left behind by interrupted runs.
const MappingFilePattern = "transcriptions*.json"

// LoadContact reads all mapping files in a contact directory, in lexical
// order so the primary transcriptions.json comes before legacy variants.
// Missing directories and unparsable files are non-fatal: they contribute
// nothing and log a warning.
func LoadContact(contactDir string, logger *slog.Logger) ([]Entry, error) {
	logger = logging.NewComponentLogger(logger, "namemap")

	paths, err := filepath.Glob(filepath.Join(contactDir, MappingFilePattern))
	if err != nil {
		return nil, fmt.Errorf("glob mapping files: %w", err)
	}
	sort.Strings(paths)

	var entries []Entry
	for _, path := range paths {
		fileEntries, err := loadFile(path)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable mapping file", "namemap_load_failed",
				logging.Error(err),
				logging.String("path", path),
				logging.String(logging.FieldImpact, "entries from this file will not resolve"))
			continue
		}
		entries = append(entries, fileEntries...)
	}
	return entries, nil
}

func loadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var raw map[string]entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mapping file: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		value := raw[name]
		entry := Entry{
			ConvertedName: name,
			Transcription: value.Transcription,
			Fingerprint:   fingerprint.Fingerprint(value.Fingerprint),
		}
		if id, ok := identifier.Extract(name); ok {
			entry.Identifier = id
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Save writes entries to the primary mapping file of a contact directory.
// Used by the upstream transcription stage and by tests.
func Save(contactDir string, entries []Entry) error {
	raw := make(map[string]entryJSON, len(entries))
	for _, entry := range entries {
		if entry.ConvertedName == "" {
			continue
		}
		raw[entry.ConvertedName] = entryJSON{
			Transcription: entry.Transcription,
			Fingerprint:   entry.Fingerprint.String(),
		}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mapping file: %w", err)
	}
	if err := os.MkdirAll(contactDir, 0o755); err != nil {
		return fmt.Errorf("create contact directory: %w", err)
	}
	return os.WriteFile(filepath.Join(contactDir, "transcriptions.json"), data, 0o644)
}
