package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewConsoleLoggerWritesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	scoped := NewComponentLogger(logger, "registry")
	scoped.Info("snapshot saved", Int("entries", 3))

	line := buf.String()
	if !strings.Contains(line, "registry: snapshot saved") {
		t.Errorf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "entries=3") {
		t.Errorf("expected attr rendering, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("probe", String("contact", "alice"))

	line := buf.String()
	if !strings.Contains(line, `"msg":"probe"`) {
		t.Errorf("expected json msg key, got %q", line)
	}
	if !strings.Contains(line, `"contact":"alice"`) {
		t.Errorf("expected contact attr, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	WarnWithContext(logger, "mapping file unreadable", "namemap_load_failed")

	out := buf.String()
	for _, want := range []string{"event_type=namemap_load_failed", "error_hint=", "impact="} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("dropped", Error(nil))
}
