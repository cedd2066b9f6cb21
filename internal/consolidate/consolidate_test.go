package consolidate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildAllRollup(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, "", false, nil)

	sections := []Section{
		{Contact: "bob", Text: "line b\n"},
		{Contact: "alice", Text: "line a\n"},
	}
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	written, err := c.Build(sections, now)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 rollup without owner, got %d", len(written))
	}

	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatalf("read rollup: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "# generated_at: 2024-05-01T10:00:00Z") {
		t.Errorf("missing timestamp header:\n%s", content)
	}
	if !strings.Contains(content, "# contacts: 2") {
		t.Errorf("missing contact count header:\n%s", content)
	}
	// Sections sorted by contact name.
	if strings.Index(content, "Contact: alice") > strings.Index(content, "Contact: bob") {
		t.Errorf("sections should be sorted by contact:\n%s", content)
	}
	if !strings.Contains(content, Separator) {
		t.Errorf("missing separator line:\n%s", content)
	}
}

func TestBuildDeterministicExceptTimestamp(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, "", false, nil)
	sections := []Section{{Contact: "alice", Text: "stable text\n"}}

	if _, err := c.Build(sections, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	first, _ := os.ReadFile(filepath.Join(dir, AllRollupName))

	if _, err := c.Build(sections, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("second Build failed: %v", err)
	}
	second, _ := os.ReadFile(filepath.Join(dir, AllRollupName))

	strip := func(content []byte) string {
		var kept []string
		for _, line := range strings.Split(string(content), "\n") {
			if strings.HasPrefix(line, "# generated_at:") {
				continue
			}
			kept = append(kept, line)
		}
		return strings.Join(kept, "\n")
	}

	if strip(first) != strip(second) {
		t.Errorf("rollups must be identical except the timestamp header:\n%s\n---\n%s", first, second)
	}
}

func TestBuildBacksUpExistingRollup(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, "", false, nil)
	sections := []Section{{Contact: "alice", Text: "v1\n"}}

	if _, err := c.Build(sections, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	sections[0].Text = "v2\n"
	if _, err := c.Build(sections, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	var backups []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".bak") {
			backups = append(backups, entry.Name())
		}
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup, got %v", backups)
	}

	data, _ := os.ReadFile(filepath.Join(dir, backups[0]))
	if !strings.Contains(string(data), "v1") {
		t.Errorf("backup should hold the previous rollup content")
	}
}

func TestBuildReceivedOnlyVariant(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, "Me", true, nil)

	text := strings.Join([]string{
		"12/03/2023, 18:45 - Me: my message",
		"continuation of my message",
		"12/03/2023, 18:46 - Alice: her message",
		"her second line",
	}, "\n")
	sections := []Section{{Contact: "alice", Text: text}}

	written, err := c.Build(sections, time.Now())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected all + received rollups, got %d", len(written))
	}

	data, _ := os.ReadFile(filepath.Join(dir, ReceivedRollupName))
	content := string(data)
	if strings.Contains(content, "my message") {
		t.Errorf("owner messages must be excluded:\n%s", content)
	}
	if !strings.Contains(content, "her message") || !strings.Contains(content, "her second line") {
		t.Errorf("received messages and continuations must be kept:\n%s", content)
	}
}

func TestBuildSkipsReceivedVariantWithoutOwner(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, "", true, nil)

	written, err := c.Build([]Section{{Contact: "a", Text: "x"}}, time.Now())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(written) != 1 {
		t.Errorf("received-only needs an owner name, got %d files", len(written))
	}
}

func TestParseSender(t *testing.T) {
	tests := []struct {
		line   string
		sender string
		ok     bool
	}{
		{"12/03/2023, 18:45 - Alice: hello", "Alice", true},
		{"12/03/2023, 18:45 - Alice Dupont: hello", "Alice Dupont", true},
		{"no structure here", "", false},
		{"12/03/2023, 18:45 - : empty sender", "", false},
	}
	for _, tc := range tests {
		sender, ok := parseSender(tc.line)
		if ok != tc.ok || sender != tc.sender {
			t.Errorf("parseSender(%q) = %q,%v want %q,%v", tc.line, sender, ok, tc.sender, tc.ok)
		}
	}
}
