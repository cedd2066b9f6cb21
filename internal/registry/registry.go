package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"voxmerge/internal/fileutil"
	"voxmerge/internal/fingerprint"
	"voxmerge/internal/logging"
)

// Record is a single transcription keyed by audio content. Created once per
// fingerprint and never overwritten afterwards.
type Record struct {
	Fingerprint fingerprint.Fingerprint `json:"-"`
	Text        string                  `json:"text"`
	Length      int                     `json:"length"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Empty reports whether the record holds a resolved-but-empty transcription.
// Distinct from "no record": the service answered, with nothing in it.
func (r Record) Empty() bool { return r.Text == "" }

// Registry is the content-addressed transcription store. It is the single
// source of truth for "has this audio already been transcribed".
type Registry struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	mu      sync.RWMutex
	records map[fingerprint.Fingerprint]Record
	dirty   bool
}

// New creates a registry bound to the given snapshot path and loads any
// existing snapshot. A missing or unparsable snapshot degrades to an empty
// registry with a logged warning, never an error.
func New(path string, logger *slog.Logger) *Registry {
	logger = logging.NewComponentLogger(logger, "registry")

	r := &Registry{
		path:    path,
		logger:  logger,
		records: make(map[fingerprint.Fingerprint]Record),
	}
	if path != "" {
		r.lock = flock.New(path + ".lock")
	}

	if err := r.Load(); err != nil {
		logging.WarnWithContext(logger, "failed to load registry snapshot", "registry_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "registry starts empty"),
			logging.String(logging.FieldImpact, "previously transcribed audio may be re-submitted upstream"))
	}
	return r
}

// Register stores a transcription for a fingerprint. If a record already
// exists it is returned unchanged; the paid transcription service must never
// be re-invoked for known content, so an existing record always wins.
func (r *Registry) Register(fp fingerprint.Fingerprint, text string) (Record, error) {
	if fp.IsZero() {
		return Record{}, errors.New("fingerprint cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[fp]; ok {
		return existing, nil
	}

	record := Record{
		Fingerprint: fp,
		Text:        text,
		Length:      len([]rune(text)),
		CreatedAt:   time.Now().UTC(),
	}
	r.records[fp] = record
	r.dirty = true

	if record.Empty() {
		r.logger.Debug("registered empty transcription",
			logging.String("fingerprint", fp.String()))
	}
	return record, nil
}

// Lookup returns the record for a fingerprint. Pure read.
func (r *Registry) Lookup(fp fingerprint.Fingerprint) (Record, bool) {
	if fp.IsZero() {
		return Record{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[fp]
	return record, ok
}

// Len returns the number of stored records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Dirty reports whether records were registered since the last Save.
func (r *Registry) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// Records returns a copy of all stored records.
func (r *Registry) Records() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	return out
}

// Load reads the snapshot into memory, merging over any records already
// present so a reload never drops registered entries.
func (r *Registry) Load() error {
	if r.path == "" {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read registry snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot map[string]Record
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse registry snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, record := range snapshot {
		fp := fingerprint.Fingerprint(key)
		if fp.IsZero() {
			continue
		}
		if _, exists := r.records[fp]; exists {
			continue
		}
		record.Fingerprint = fp
		r.records[fp] = record
	}

	r.logger.Debug("loaded registry snapshot",
		logging.Int("records", len(r.records)),
		logging.String("path", r.path))
	return nil
}

// Save persists the full in-memory map as a snapshot. The write is atomic
// (temp file + rename) and guarded by a file lock so two Save calls for the
// same path never interleave. The previous snapshot is backed up first.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}

	if r.lock != nil {
		if err := r.lock.Lock(); err != nil {
			return fmt.Errorf("acquire registry lock: %w", err)
		}
		defer func() {
			_ = r.lock.Unlock()
		}()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]Record, len(r.records))
	for fp, record := range r.records {
		snapshot[fp.String()] = record
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry snapshot: %w", err)
	}

	if backup, err := fileutil.BackupFile(r.path, time.Now()); err != nil {
		return err
	} else if backup != "" {
		r.logger.Debug("backed up registry snapshot", logging.String("backup", backup))
	}

	if err := fileutil.WriteFileAtomic(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry snapshot: %w", err)
	}

	r.dirty = false
	r.logger.Debug("saved registry snapshot",
		logging.Int("records", len(r.records)),
		logging.String("path", r.path))
	return nil
}
