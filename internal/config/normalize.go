package config

import (
	"fmt"
	"strings"
)

// normalize expands path fields and fills empty values with defaults.
func (c *Config) normalize() error {
	defaults := Default()

	if strings.TrimSpace(c.Merge.TranscriptName) == "" {
		c.Merge.TranscriptName = defaults.Merge.TranscriptName
	}
	if strings.TrimSpace(c.Merge.MergedName) == "" {
		c.Merge.MergedName = defaults.Merge.MergedName
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"paths.archive_dir", &c.Paths.ArchiveDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.registry_path", &c.Paths.RegistryPath},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			continue
		}
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	c.Consolidate.OwnerName = strings.TrimSpace(c.Consolidate.OwnerName)
	return nil
}
