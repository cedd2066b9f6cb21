// Package runlog persists per-contact merge outcomes in SQLite so runs can
// be inspected after the fact and failures reported without stack traces.
package runlog
