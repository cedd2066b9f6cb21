// Package consolidate aggregates per-contact merged transcripts into
// cross-contact rollup files with backup-before-overwrite semantics.
package consolidate
