package runlog

import "time"

// Status tracks a contact's progress within one run. Begin inserts rows at
// merging; there is no queued state, a contact enters the ledger when its
// merge starts.
type Status string

const (
	StatusMerging Status = "merging"
	StatusMerged  Status = "merged"
	StatusFailed  Status = "failed"
)

// Record is one contact's outcome within a run.
type Record struct {
	ID           int64
	RunID        string
	Contact      string
	Status       Status
	References   int
	Resolved     int
	Unresolved   int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary aggregates a run's records.
type Summary struct {
	RunID      string
	Contacts   int
	Merged     int
	Failed     int
	References int
	Resolved   int
	Unresolved int
}
