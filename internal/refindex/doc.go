// Package refindex builds the per-contact in-memory mapping from converted
// audio filenames to transcription text, joining mapping entries to registry
// records.
package refindex
