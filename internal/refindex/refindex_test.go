package refindex

import (
	"path/filepath"
	"testing"

	"voxmerge/internal/fingerprint"
	"voxmerge/internal/namemap"
	"voxmerge/internal/registry"
)

func strptr(s string) *string { return &s }

func TestBuildInlineTextWins(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)
	fp := fingerprint.ComputeBytes([]byte("audio"))
	if _, err := reg.Register(fp, "from registry"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	mappings := []namemap.Entry{
		{ConvertedName: "a.mp3", Transcription: strptr("inline"), Fingerprint: fp},
	}
	idx := Build("alice", mappings, reg, nil)

	entry, ok := idx.LookupName("a.mp3")
	if !ok {
		t.Fatal("entry not found")
	}
	if entry.Text != "inline" {
		t.Errorf("inline text must win over registry, got %q", entry.Text)
	}
}

func TestBuildFallsBackToRegistry(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)
	fp := fingerprint.ComputeBytes([]byte("audio"))
	if _, err := reg.Register(fp, "Bonjour"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	mappings := []namemap.Entry{
		{ConvertedName: "b.mp3", Fingerprint: fp},
	}
	idx := Build("alice", mappings, reg, nil)

	entry, ok := idx.LookupName("b.mp3")
	if !ok {
		t.Fatal("entry not found")
	}
	if !entry.Resolved || entry.Text != "Bonjour" {
		t.Errorf("expected registry resolution, got %+v", entry)
	}
}

func TestBuildKeepsUnresolvedEntries(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)

	mappings := []namemap.Entry{
		{ConvertedName: "never_attempted.mp3"},
		{ConvertedName: "missing_fp.mp3", Fingerprint: "deadbeef"},
	}
	idx := Build("alice", mappings, reg, nil)

	if len(idx.Entries()) != 2 {
		t.Fatalf("unresolved entries must be kept, got %d", len(idx.Entries()))
	}
	if idx.ResolvedCount() != 0 {
		t.Errorf("nothing should resolve, got %d", idx.ResolvedCount())
	}
	if idx.UnresolvedCount() != 2 {
		t.Errorf("expected 2 unresolved, got %d", idx.UnresolvedCount())
	}
	if idx.FingerprintMisses != 1 {
		t.Errorf("fingerprint miss should be counted, got %d", idx.FingerprintMisses)
	}
}

func TestBuildFirstSuccessfulResolutionWins(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)

	mappings := []namemap.Entry{
		{ConvertedName: "dup.mp3", Transcription: strptr("first good")},
		{ConvertedName: "dup.mp3", Transcription: strptr("stale rerun")},
	}
	idx := Build("alice", mappings, reg, nil)

	entry, _ := idx.LookupName("dup.mp3")
	if entry.Text != "first good" {
		t.Errorf("first successful resolution must win, got %q", entry.Text)
	}
	if len(idx.Entries()) != 1 {
		t.Errorf("duplicates must collapse, got %d entries", len(idx.Entries()))
	}
}

func TestBuildLaterFileResolvesEarlierMiss(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)

	mappings := []namemap.Entry{
		{ConvertedName: "dup.mp3"},
		{ConvertedName: "dup.mp3", Transcription: strptr("finally resolved")},
	}
	idx := Build("alice", mappings, reg, nil)

	entry, _ := idx.LookupName("dup.mp3")
	if !entry.Resolved || entry.Text != "finally resolved" {
		t.Errorf("later resolution should fill an unresolved entry, got %+v", entry)
	}
}

func TestLookupNameNormalizes(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)
	mappings := []namemap.Entry{
		{ConvertedName: "Note.MP3", Transcription: strptr("text")},
	}
	idx := Build("alice", mappings, reg, nil)

	if _, ok := idx.LookupName("note.mp3"); !ok {
		t.Error("lookup should be case-insensitive")
	}
}

func TestResolvedButEmptyCountsAsResolved(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry.json"), nil)
	mappings := []namemap.Entry{
		{ConvertedName: "silent.mp3", Transcription: strptr("")},
	}
	idx := Build("alice", mappings, reg, nil)

	entry, _ := idx.LookupName("silent.mp3")
	if !entry.Resolved {
		t.Error("empty inline transcription is resolved, not missing")
	}
	if entry.Text != "" {
		t.Errorf("text should be empty, got %q", entry.Text)
	}
}
