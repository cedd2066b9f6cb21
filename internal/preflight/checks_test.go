package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"voxmerge/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ArchiveDir = filepath.Join(dir, "archive")
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.RegistryPath = filepath.Join(dir, "out", "registry.json")
	for _, sub := range []string{cfg.Paths.ArchiveDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}
	return &cfg
}

func TestRunAllPassing(t *testing.T) {
	results := Run(testConfig(t))
	if !AllPassed(results) {
		t.Errorf("all checks should pass: %+v", results)
	}
	if len(results) != 4 {
		t.Errorf("expected 4 checks, got %d", len(results))
	}
}

func TestRunMissingArchive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.ArchiveDir = filepath.Join(cfg.Paths.ArchiveDir, "absent")

	results := Run(cfg)
	if AllPassed(results) {
		t.Error("missing archive directory must fail preflight")
	}

	var archiveResult *Result
	for i := range results {
		if results[i].Name == "archive directory" {
			archiveResult = &results[i]
		}
	}
	if archiveResult == nil || archiveResult.Passed {
		t.Errorf("archive check should fail: %+v", results)
	}
}

func TestRunArchiveIsFile(t *testing.T) {
	cfg := testConfig(t)
	filePath := filepath.Join(cfg.Paths.OutputDir, "not_a_dir")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg.Paths.ArchiveDir = filePath

	results := Run(cfg)
	if AllPassed(results) {
		t.Error("file in place of directory must fail preflight")
	}
}
