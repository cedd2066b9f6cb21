package config

// Default returns a configuration populated with built-in defaults. Paths are
// left relative here and expanded during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir:   "~/voxmerge/archive",
			OutputDir:    "~/voxmerge/output",
			LogDir:       "~/voxmerge/logs",
			RegistryPath: "~/voxmerge/output/registry.json",
		},
		Merge: Merge{
			TranscriptName: "discussion.txt",
			MergedName:     "discussion_merged.txt",
		},
		Consolidate: Consolidate{
			Enabled:      true,
			ReceivedOnly: true,
			OwnerName:    "",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
