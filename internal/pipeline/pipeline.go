// Package pipeline drives a full merge run: contact discovery, reference
// index construction, per-contact merging, registry persistence, and rollup
// generation, with outcomes recorded in the run ledger.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"voxmerge/internal/config"
	"voxmerge/internal/consolidate"
	"voxmerge/internal/fileutil"
	"voxmerge/internal/logging"
	"voxmerge/internal/merger"
	"voxmerge/internal/namemap"
	"voxmerge/internal/refindex"
	"voxmerge/internal/registry"
	"voxmerge/internal/resolver"
	"voxmerge/internal/runlog"
)

// ContactResult is the per-contact outcome of a run.
type ContactResult struct {
	Contact    string
	Stats      merger.Stats
	MergedPath string
	Err        error
}

// Result aggregates a full run.
type Result struct {
	RunID    string
	Contacts []ContactResult
	Stats    merger.Stats
	Failed   int
	// Rollups lists consolidated output files, empty when consolidation is
	// disabled or no contact merged successfully.
	Rollups []string
}

// Runner executes merge runs against an archive directory tree.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Registry
	store    *runlog.Store
	merger   *merger.Merger
}

// NewRunner wires a runner from its collaborators. The store may be nil, in
// which case run outcomes are not persisted.
func NewRunner(cfg *config.Config, logger *slog.Logger, reg *registry.Registry, store *runlog.Store) *Runner {
	componentLogger := logging.NewComponentLogger(logger, "pipeline")
	return &Runner{
		cfg:      cfg,
		logger:   componentLogger,
		registry: reg,
		store:    store,
		merger:   merger.New(resolver.New(logger), logger),
	}
}

// DiscoverContacts lists archive subdirectories that contain the configured
// transcript file, sorted by name.
func (r *Runner) DiscoverContacts() ([]string, error) {
	dirEntries, err := os.ReadDir(r.cfg.Paths.ArchiveDir)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "", "read archive directory", err)
	}

	var contacts []string
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		transcript := filepath.Join(r.cfg.Paths.ArchiveDir, dirEntry.Name(), r.cfg.Merge.TranscriptName)
		if info, statErr := os.Stat(transcript); statErr != nil || info.IsDir() {
			continue
		}
		contacts = append(contacts, dirEntry.Name())
	}
	sort.Strings(contacts)
	return contacts, nil
}

// BuildIndexes constructs the reference index of every contact. Contacts whose
// mapping files are unreadable still get an index; the entries are just absent.
func (r *Runner) BuildIndexes(contacts []string) (map[string]*refindex.Index, error) {
	indexes := make(map[string]*refindex.Index, len(contacts))
	for _, contact := range contacts {
		contactDir := filepath.Join(r.cfg.Paths.ArchiveDir, contact)
		mappings, err := namemap.LoadContact(contactDir, r.logger)
		if err != nil {
			return nil, Wrap(ErrTransient, contact, "load mapping files", err)
		}
		indexes[contact] = refindex.Build(contact, mappings, r.registry, r.logger)
	}
	return indexes, nil
}

// Run merges every discovered contact, saves the registry, and generates
// rollups. A failing contact is recorded and skipped; only run-level problems
// (unreadable archive, registry save failure) return an error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	contacts, err := r.DiscoverContacts()
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, Wrap(ErrNotFound, "", "discover contacts",
			fmt.Errorf("no contact directory under %s contains %s", r.cfg.Paths.ArchiveDir, r.cfg.Merge.TranscriptName))
	}

	indexes, err := r.BuildIndexes(contacts)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	r.logger.Info("run started",
		logging.String(logging.FieldRunID, result.RunID),
		logging.Int("contacts", len(contacts)))

	var sections []consolidate.Section
	for _, contact := range contacts {
		if ctx.Err() != nil {
			return result, Wrap(ErrTransient, contact, "run cancelled", ctx.Err())
		}

		contactResult := r.mergeContact(ctx, result.RunID, contact, indexes)
		result.Contacts = append(result.Contacts, contactResult)
		if contactResult.Err != nil {
			result.Failed++
			logging.WarnWithContext(r.logger, "contact merge failed", "contact_merge_failed",
				logging.String(logging.FieldContact, contact),
				logging.Error(contactResult.Err),
				logging.String(logging.FieldImpact, "contact skipped, run continues"))
			continue
		}
		result.Stats.Add(contactResult.Stats)

		mergedText, readErr := os.ReadFile(contactResult.MergedPath)
		if readErr == nil {
			sections = append(sections, consolidate.Section{Contact: contact, Text: string(mergedText)})
		}
	}

	if r.registry != nil && r.registry.Dirty() {
		if err := r.registry.Save(); err != nil {
			return result, Wrap(ErrTransient, "", "save registry", err)
		}
	}

	if r.cfg.Consolidate.Enabled && len(sections) > 0 {
		consolidator := consolidate.New(
			r.cfg.Paths.OutputDir,
			r.cfg.Consolidate.OwnerName,
			r.cfg.Consolidate.ReceivedOnly,
			r.logger,
		)
		rollups, err := consolidator.Build(sections, time.Now())
		if err != nil {
			return result, Wrap(ErrTransient, "", "generate rollups", err)
		}
		result.Rollups = rollups
	}

	r.logger.Info("run finished",
		logging.String(logging.FieldRunID, result.RunID),
		logging.Int("merged", len(result.Contacts)-result.Failed),
		logging.Int("failed", result.Failed),
		logging.Int("references", result.Stats.References),
		logging.Int("resolved", result.Stats.Resolved),
		logging.Int("unresolved", result.Stats.Unresolved))
	return result, nil
}

// MergeOne merges a single contact without touching the others' transcripts.
// The full index set is still built so cross-contact fallback keeps working.
func (r *Runner) MergeOne(ctx context.Context, contact string) (*Result, error) {
	contacts, err := r.DiscoverContacts()
	if err != nil {
		return nil, err
	}

	found := false
	for _, candidate := range contacts {
		if candidate == contact {
			found = true
			break
		}
	}
	if !found {
		return nil, Wrap(ErrNotFound, contact, "locate contact",
			fmt.Errorf("no transcript %s under %s", r.cfg.Merge.TranscriptName, filepath.Join(r.cfg.Paths.ArchiveDir, contact)))
	}

	indexes, err := r.BuildIndexes(contacts)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	contactResult := r.mergeContact(ctx, result.RunID, contact, indexes)
	result.Contacts = append(result.Contacts, contactResult)
	if contactResult.Err != nil {
		result.Failed++
		return result, contactResult.Err
	}
	result.Stats = contactResult.Stats

	if r.registry != nil && r.registry.Dirty() {
		if err := r.registry.Save(); err != nil {
			return result, Wrap(ErrTransient, "", "save registry", err)
		}
	}
	return result, nil
}

// ConsolidateExisting rebuilds the rollup files from merged transcripts
// already on disk, without re-merging anything.
func (r *Runner) ConsolidateExisting(now time.Time) ([]string, error) {
	contacts, err := r.DiscoverContacts()
	if err != nil {
		return nil, err
	}

	var sections []consolidate.Section
	for _, contact := range contacts {
		mergedPath := filepath.Join(r.cfg.Paths.ArchiveDir, contact, r.cfg.Merge.MergedName)
		data, readErr := os.ReadFile(mergedPath)
		if readErr != nil {
			continue
		}
		sections = append(sections, consolidate.Section{Contact: contact, Text: string(data)})
	}
	if len(sections) == 0 {
		return nil, Wrap(ErrNotFound, "", "collect merged transcripts",
			fmt.Errorf("no contact under %s has a %s file", r.cfg.Paths.ArchiveDir, r.cfg.Merge.MergedName))
	}

	consolidator := consolidate.New(
		r.cfg.Paths.OutputDir,
		r.cfg.Consolidate.OwnerName,
		r.cfg.Consolidate.ReceivedOnly,
		r.logger,
	)
	return consolidator.Build(sections, now)
}

func (r *Runner) mergeContact(ctx context.Context, runID, contact string, indexes map[string]*refindex.Index) ContactResult {
	contactResult := ContactResult{Contact: contact}

	var ledgerID int64
	if r.store != nil {
		record, err := r.store.Begin(ctx, runID, contact)
		if err != nil {
			contactResult.Err = Wrap(ErrTransient, contact, "record run start", err)
			return contactResult
		}
		ledgerID = record.ID
	}

	fail := func(err error) ContactResult {
		contactResult.Err = err
		if r.store != nil {
			if markErr := r.store.MarkFailed(ctx, ledgerID, err.Error()); markErr != nil {
				r.logger.Error("failed to record contact failure",
					logging.String(logging.FieldContact, contact),
					logging.Error(markErr))
			}
		}
		return contactResult
	}

	contactDir := filepath.Join(r.cfg.Paths.ArchiveDir, contact)
	transcriptPath := filepath.Join(contactDir, r.cfg.Merge.TranscriptName)
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return fail(Wrap(ErrNotFound, contact, "read transcript", err))
	}

	rctx := &resolver.Context{
		Contact:    contact,
		Index:      indexes[contact],
		AllIndexes: indexes,
		Registry:   r.registry,
		AudioDir:   contactDir,
	}
	merged, stats := r.merger.Merge(string(data), rctx)
	contactResult.Stats = stats

	mergedPath := filepath.Join(contactDir, r.cfg.Merge.MergedName)
	if err := fileutil.WriteFileAtomic(mergedPath, []byte(merged), 0o644); err != nil {
		return fail(Wrap(ErrTransient, contact, "write merged transcript", err))
	}
	contactResult.MergedPath = mergedPath

	if r.store != nil {
		if err := r.store.MarkMerged(ctx, ledgerID, stats.References, stats.Resolved, stats.Unresolved); err != nil {
			return fail(Wrap(ErrTransient, contact, "record merge outcome", err))
		}
	}

	r.logger.Info("contact merged",
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldContact, contact),
		logging.Int("references", stats.References),
		logging.Int("resolved", stats.Resolved),
		logging.Int("unresolved", stats.Unresolved))
	return contactResult
}
