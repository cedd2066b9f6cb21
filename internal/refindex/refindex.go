package refindex

import (
	"log/slog"

	"voxmerge/internal/identifier"
	"voxmerge/internal/logging"
	"voxmerge/internal/namemap"
	"voxmerge/internal/registry"
)

// Entry is one converted audio file with its resolution outcome. Entries that
// resolve to nothing are kept as "known but unresolved" so diagnostics can
// tell "never attempted" apart from "attempted but empty".
type Entry struct {
	ConvertedName string
	Identifier    string
	Text          string
	Resolved      bool
}

// Index maps a contact's converted audio names to transcription text.
type Index struct {
	Contact string

	entries []Entry
	byName  map[string]int

	// FingerprintMisses counts mapping entries whose fingerprint was absent
	// from the registry. Surfaced in diagnostics only.
	FingerprintMisses int
}

// Build joins a contact's mapping entries to transcription text: inline text
// when the mapping carries it, otherwise a registry lookup by fingerprint.
// Duplicate names across mapping files keep the first successful resolution,
// so partial reruns never overwrite good entries with stale ones.
func Build(contact string, mappings []namemap.Entry, reg *registry.Registry, logger *slog.Logger) *Index {
	logger = logging.NewComponentLogger(logger, "refindex")

	idx := &Index{
		Contact: contact,
		byName:  make(map[string]int, len(mappings)),
	}

	for _, mapping := range mappings {
		if mapping.ConvertedName == "" {
			continue
		}

		text, resolved := resolveMapping(mapping, reg, idx)
		key := identifier.Normalize(mapping.ConvertedName)

		if pos, seen := idx.byName[key]; seen {
			if !idx.entries[pos].Resolved && resolved {
				idx.entries[pos].Text = text
				idx.entries[pos].Resolved = true
			}
			continue
		}

		idx.byName[key] = len(idx.entries)
		idx.entries = append(idx.entries, Entry{
			ConvertedName: mapping.ConvertedName,
			Identifier:    mapping.Identifier,
			Text:          text,
			Resolved:      resolved,
		})
	}

	logger.Debug("built reference index",
		logging.String(logging.FieldContact, contact),
		logging.Int("entries", len(idx.entries)),
		logging.Int("resolved", idx.ResolvedCount()),
		logging.Int("fingerprint_misses", idx.FingerprintMisses))
	return idx
}

func resolveMapping(mapping namemap.Entry, reg *registry.Registry, idx *Index) (string, bool) {
	if mapping.Transcription != nil {
		return *mapping.Transcription, true
	}
	if !mapping.Fingerprint.IsZero() && reg != nil {
		if record, ok := reg.Lookup(mapping.Fingerprint); ok {
			return record.Text, true
		}
		idx.FingerprintMisses++
	}
	return "", false
}

// LookupName returns the entry whose converted name matches exactly (after
// normalization of case and unicode form).
func (idx *Index) LookupName(name string) (Entry, bool) {
	pos, ok := idx.byName[identifier.Normalize(name)]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos], true
}

// Entries returns all entries in first-seen order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// ResolvedCount returns the number of entries with transcription text.
func (idx *Index) ResolvedCount() int {
	count := 0
	for _, entry := range idx.entries {
		if entry.Resolved {
			count++
		}
	}
	return count
}

// UnresolvedCount returns the number of known-but-unresolved entries.
func (idx *Index) UnresolvedCount() int {
	return len(idx.entries) - idx.ResolvedCount()
}
