// Package merger rewrites conversation transcripts, substituting audio
// placeholders with their resolved transcriptions. Merging is idempotent:
// enriched markers are recognized as final.
package merger
