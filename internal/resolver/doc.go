// Package resolver maps audio references found in conversation transcripts
// to cached transcription text by applying an ordered cascade of matching
// strategies.
package resolver
