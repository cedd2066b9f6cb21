// Package namemap loads the per-contact mapping files that link converted
// audio filenames to transcriptions or registry fingerprints.
package namemap
