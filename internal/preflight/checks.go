// Package preflight verifies the filesystem prerequisites of a merge run
// before anything is written.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"voxmerge/internal/config"
)

// Result describes the outcome of a single check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes all checks for the given configuration.
func Run(cfg *config.Config) []Result {
	results := []Result{
		checkReadableDir("archive directory", cfg.Paths.ArchiveDir),
		checkWritableDir("output directory", cfg.Paths.OutputDir),
	}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, checkWritableDir("log directory", cfg.Paths.LogDir))
	}
	results = append(results, checkWritableDir("registry directory", filepath.Dir(cfg.Paths.RegistryPath)))
	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

func checkReadableDir(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not accessible: %v", err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not readable: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

func checkWritableDir(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not accessible: %v", err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not writable: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}
