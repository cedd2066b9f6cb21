package resolver

import (
	"os"
	"path/filepath"
	"sort"

	"voxmerge/internal/fingerprint"
	"voxmerge/internal/identifier"
	"voxmerge/internal/refindex"
)

// ExactNameStrategy matches the reference's literal filename against a
// converted audio name for the same contact. Highest confidence.
type ExactNameStrategy struct{}

func (ExactNameStrategy) Name() string { return "exact_name" }

func (ExactNameStrategy) Resolve(ref Reference, rctx *Context) (string, bool) {
	if rctx.Index == nil {
		return "", false
	}
	entry, ok := rctx.Index.LookupName(ref.Raw)
	if !ok || !entry.Resolved {
		return "", false
	}
	return entry.Text, true
}

// FingerprintStrategy hashes the referenced file when it exists on disk and
// looks the fingerprint up in the registry. Confidence equal to exact-name
// matching but independent of naming.
type FingerprintStrategy struct{}

func (FingerprintStrategy) Name() string { return "fingerprint" }

func (FingerprintStrategy) Resolve(ref Reference, rctx *Context) (string, bool) {
	if rctx.Registry == nil {
		return "", false
	}

	path := ref.Raw
	if !filepath.IsAbs(path) {
		if rctx.AudioDir == "" {
			return "", false
		}
		path = filepath.Join(rctx.AudioDir, ref.Raw)
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", false
	}

	fp, err := fingerprint.Compute(path)
	if err != nil {
		return "", false
	}
	record, ok := rctx.Registry.Lookup(fp)
	if !ok {
		return "", false
	}
	return record.Text, true
}

// ContactIdentifierStrategy matches on the extracted identifier against the
// same contact's mapping entries.
type ContactIdentifierStrategy struct{}

func (ContactIdentifierStrategy) Name() string { return "contact_identifier" }

func (ContactIdentifierStrategy) Resolve(ref Reference, rctx *Context) (string, bool) {
	if rctx.Index == nil {
		return "", false
	}
	id, ok := identifier.Extract(ref.Raw)
	if !ok {
		return "", false
	}
	return pickBest(identifierCandidates(rctx.Index, id))
}

// CrossContactIdentifierStrategy scans every contact's entries for the
// extracted identifier. Converted files are sometimes filed under the wrong
// contact by earlier pipeline stages; this is the last-resort recovery for
// those. Contacts are scanned in sorted order for deterministic tie-breaks.
type CrossContactIdentifierStrategy struct{}

func (CrossContactIdentifierStrategy) Name() string { return "cross_contact_identifier" }

func (CrossContactIdentifierStrategy) Resolve(ref Reference, rctx *Context) (string, bool) {
	if len(rctx.AllIndexes) == 0 {
		return "", false
	}
	id, ok := identifier.Extract(ref.Raw)
	if !ok {
		return "", false
	}

	contacts := make([]string, 0, len(rctx.AllIndexes))
	for contact := range rctx.AllIndexes {
		contacts = append(contacts, contact)
	}
	sort.Strings(contacts)

	var candidates []refindex.Entry
	for _, contact := range contacts {
		if contact == rctx.Contact {
			// Same-contact matching already ran earlier in the cascade.
			continue
		}
		idx := rctx.AllIndexes[contact]
		if idx == nil {
			continue
		}
		candidates = append(candidates, identifierCandidates(idx, id)...)
	}
	return pickBest(candidates)
}

func identifierCandidates(idx *refindex.Index, id string) []refindex.Entry {
	var out []refindex.Entry
	for _, entry := range idx.Entries() {
		if entry.Resolved && entry.Identifier == id {
			out = append(out, entry)
		}
	}
	return out
}

// pickBest applies the tie-break rule: longest transcription first, then the
// first candidate encountered.
func pickBest(candidates []refindex.Entry) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	bestLen := len([]rune(best.Text))
	for _, candidate := range candidates[1:] {
		if l := len([]rune(candidate.Text)); l > bestLen {
			best = candidate
			bestLen = l
		}
	}
	return best.Text, true
}
