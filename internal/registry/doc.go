// Package registry implements the durable content-addressed transcription
// store: one record per audio fingerprint, persisted as a JSON snapshot with
// atomic writes, lock-guarded saves, and backup-before-overwrite.
package registry
