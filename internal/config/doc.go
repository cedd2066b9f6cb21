// Package config loads, normalizes, and validates voxmerge configuration
// from TOML files.
package config
