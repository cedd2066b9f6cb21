package merger

import (
	"strings"
	"testing"

	"voxmerge/internal/identifier"
	"voxmerge/internal/namemap"
	"voxmerge/internal/refindex"
	"voxmerge/internal/registry"
	"voxmerge/internal/resolver"
)

const refUUID = "abcd1234-ef56-7890-ab12-34567890cdef"

func strptr(s string) *string { return &s }

func testContext(t *testing.T, mappings ...namemap.Entry) *resolver.Context {
	t.Helper()
	for i := range mappings {
		if id, ok := identifier.Extract(mappings[i].ConvertedName); ok {
			mappings[i].Identifier = id
		}
	}
	reg := registry.New("", nil)
	idx := refindex.Build("alice", mappings, reg, nil)
	return &resolver.Context{
		Contact:    "alice",
		Index:      idx,
		AllIndexes: map[string]*refindex.Index{"alice": idx},
		Registry:   reg,
	}
}

func newMerger() *Merger {
	return New(resolver.New(nil), nil)
}

func TestMergeResolvesReference(t *testing.T) {
	rctx := testContext(t,
		namemap.Entry{ConvertedName: refUUID + ".mp3", Transcription: strptr("Bonjour")},
	)

	input := "12/03/2023, 18:45 - Alice: [AUDIO] received_" + refUUID + ".opus"
	merged, stats := newMerger().Merge(input, rctx)

	want := "12/03/2023, 18:45 - Alice: " + EnrichedMarker + ` "Bonjour"`
	if merged != want {
		t.Errorf("merged line mismatch:\n got %q\nwant %q", merged, want)
	}
	if stats.References != 1 || stats.Resolved != 1 || stats.Unresolved != 0 {
		t.Errorf("stats mismatch: %+v", stats)
	}
}

func TestMergeUnresolvedLeavesLineUntouched(t *testing.T) {
	rctx := testContext(t)

	input := "12/03/2023, 18:45 - Alice: [AUDIO] received_" + refUUID + ".opus"
	merged, stats := newMerger().Merge(input, rctx)

	if merged != input {
		t.Errorf("unresolved line must stay byte-identical:\n got %q\nwant %q", merged, input)
	}
	if stats.Unresolved != 1 {
		t.Errorf("unresolved counter should increment, got %+v", stats)
	}
}

func TestMergeIdempotent(t *testing.T) {
	rctx := testContext(t,
		namemap.Entry{ConvertedName: refUUID + ".mp3", Transcription: strptr("Salut")},
	)
	m := newMerger()

	input := "hello\n[AUDIO] " + refUUID + ".mp3\nbye\n[AUDIO] unknown.opus"
	once, onceStats := m.Merge(input, rctx)
	twice, twiceStats := m.Merge(once, rctx)

	if once != twice {
		t.Errorf("merge must be idempotent:\nonce  %q\ntwice %q", once, twice)
	}
	if onceStats.Resolved != 1 {
		t.Errorf("first pass should resolve one reference: %+v", onceStats)
	}
	if twiceStats.Resolved != 0 {
		t.Errorf("second pass must not re-resolve enriched markers: %+v", twiceStats)
	}
	// The untouched bare marker is still counted on the second pass.
	if twiceStats.Unresolved != 1 {
		t.Errorf("second pass should still report the unresolved marker: %+v", twiceStats)
	}
}

func TestMergeMultipleMarkersPerLine(t *testing.T) {
	rctx := testContext(t,
		namemap.Entry{ConvertedName: "one.mp3", Transcription: strptr("un")},
		namemap.Entry{ConvertedName: "two.mp3", Transcription: strptr("deux")},
	)

	input := "x [AUDIO] one.mp3 y [AUDIO] two.mp3 z"
	merged, stats := newMerger().Merge(input, rctx)

	want := `x [AUDIO TRANSCRIT] "un" y [AUDIO TRANSCRIT] "deux" z`
	if merged != want {
		t.Errorf("multi-marker line mismatch:\n got %q\nwant %q", merged, want)
	}
	if stats.References != 2 || stats.Resolved != 2 {
		t.Errorf("stats mismatch: %+v", stats)
	}
}

func TestMergeMixedResolution(t *testing.T) {
	rctx := testContext(t,
		namemap.Entry{ConvertedName: "known.mp3", Transcription: strptr("ok")},
	)

	input := "[AUDIO] known.mp3 and [AUDIO] unknown.mp3"
	merged, stats := newMerger().Merge(input, rctx)

	want := `[AUDIO TRANSCRIT] "ok" and [AUDIO] unknown.mp3`
	if merged != want {
		t.Errorf("mixed line mismatch:\n got %q\nwant %q", merged, want)
	}
	if stats.Resolved != 1 || stats.Unresolved != 1 {
		t.Errorf("stats mismatch: %+v", stats)
	}
}

func TestMergeNoMarkers(t *testing.T) {
	rctx := testContext(t)
	input := "plain conversation line\nanother line"
	merged, stats := newMerger().Merge(input, rctx)

	if merged != input {
		t.Errorf("text without markers must pass through unchanged")
	}
	if stats.References != 0 {
		t.Errorf("no references expected, got %+v", stats)
	}
}

func TestMergeMarkerWithoutReference(t *testing.T) {
	rctx := testContext(t)
	input := "trailing marker [AUDIO]"
	merged, stats := newMerger().Merge(input, rctx)

	if merged != input {
		t.Errorf("bare marker without reference must stay untouched, got %q", merged)
	}
	if stats.References != 1 || stats.Unresolved != 1 {
		t.Errorf("stats mismatch: %+v", stats)
	}
}

func TestMergeResolvedEmptyText(t *testing.T) {
	rctx := testContext(t,
		namemap.Entry{ConvertedName: "silent.mp3", Transcription: strptr("")},
	)

	merged, stats := newMerger().Merge("[AUDIO] silent.mp3", rctx)
	if merged != `[AUDIO TRANSCRIT] ""` {
		t.Errorf("matched-empty should produce an empty enriched marker, got %q", merged)
	}
	if stats.Resolved != 1 {
		t.Errorf("matched-empty counts as resolved: %+v", stats)
	}
}

func TestMergePreservesSurroundingLines(t *testing.T) {
	rctx := testContext(t,
		namemap.Entry{ConvertedName: "note.mp3", Transcription: strptr("texte")},
	)

	input := strings.Join([]string{
		"header line",
		"12/03/2023 - Bob: [AUDIO] note.mp3",
		"trailer line",
	}, "\n")
	merged, _ := newMerger().Merge(input, rctx)

	lines := strings.Split(merged, "\n")
	if lines[0] != "header line" || lines[2] != "trailer line" {
		t.Errorf("non-marker lines must be preserved: %q", merged)
	}
}
