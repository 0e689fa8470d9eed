// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/luxfi/restorepoint/pkg/status"
	"github.com/luxfi/restorepoint/pkg/utils"
	"github.com/luxfi/restorepoint/pkg/ux"
	"go.uber.org/zap"
)

// ArchiveRequest describes one archive run.
type ArchiveRequest struct {
	// Paths are absolute and archived with their full path structure.
	Paths []string
	// Exclude holds absolute paths and relative glob patterns.
	Exclude     []string
	Destination io.Writer
	// Progress, if set, sees the uncompressed stream.
	Progress    io.Writer
	Diagnostics io.Writer
	// Root is the filesystem root the paths live under, "/" on a real host.
	Root string
}

// ExtractRequest describes one extract run over Root.
type ExtractRequest struct {
	Source io.Reader
	Root   string
	// Progress, if set, sees the compressed stream.
	Progress    io.Writer
	Diagnostics io.Writer
}

// Archiver produces and expands compressed path-preserving archives.
type Archiver interface {
	Archive(ctx context.Context, req ArchiveRequest) (int64, error)
	Extract(ctx context.Context, req ExtractRequest) error
}

// DeviceEnumerator lists mounted removable volumes.
type DeviceEnumerator interface {
	ListRemovableVolumes() []string
}

// SizeEstimator sums the on-disk size of paths, honoring exclude.
type SizeEstimator interface {
	Estimate(paths, exclude []string) (int64, error)
}

// Deps are the collaborators of a SnapshotManager.
type Deps struct {
	Catalog   *Catalog
	Archiver  Archiver
	Devices   DeviceEnumerator
	Estimator SizeEstimator
	Prompt    prompts.Prompter
	UX        *ux.UserLog
	Log       luxlog.Logger
	// FreeSpace reports available bytes on the filesystem holding path.
	FreeSpace func(path string) (uint64, error)
	Clock     func() time.Time
}

// Options are the configured path sets and behavior switches.
type Options struct {
	SystemPaths []string
	FullPaths   []string
	Exclude     []string
	Progress    bool
	Root        string
}

// SnapshotManager runs the create, list, restore and delete lifecycle.
type SnapshotManager struct {
	Deps
	opts Options
}

// NewSnapshotManager wires deps and opts. Missing optional collaborators
// get harmless defaults.
func NewSnapshotManager(deps Deps, opts Options) *SnapshotManager {
	if deps.Log == nil {
		deps.Log = luxlog.NewNoOpLogger()
	}
	if deps.UX == nil {
		deps.UX = ux.NewUserLog(deps.Log, io.Discard, true)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if opts.Root == "" {
		opts.Root = "/"
	}
	if len(opts.SystemPaths) == 0 {
		opts.SystemPaths = constants.DefaultSystemPaths
	}
	if len(opts.FullPaths) == 0 {
		opts.FullPaths = constants.DefaultFullPaths
	}
	m := &SnapshotManager{Deps: deps, opts: opts}
	if m.Catalog != nil && m.Catalog.OnCorrupt == nil {
		m.Catalog.OnCorrupt = func(e *CorruptRecordError) {
			m.UX.Warn("skipping unreadable restore point '%s': %s", e.Name, e.Reason)
		}
	}
	return m
}

// CreateOptions select what a new snapshot covers.
type CreateOptions struct {
	Kind             Kind
	IncludeRemovable bool
}

// BasePaths returns the configured path set of kind.
func (m *SnapshotManager) BasePaths(kind Kind) ([]string, error) {
	switch kind {
	case KindSystem:
		return utils.Unique(m.opts.SystemPaths), nil
	case KindFull:
		return utils.Unique(m.opts.FullPaths), nil
	default:
		_, err := ParseKind(string(kind))
		return nil, err
	}
}

// Excludes builds the exclusion list for paths. Built-in excludes that
// would swallow an explicitly included path are dropped so a selected
// removable volume under /media is still archived.
func (m *SnapshotManager) Excludes(paths []string) []string {
	candidates := make([]string, 0, len(constants.VirtualExcludes)+len(m.opts.Exclude)+1)
	candidates = append(candidates, constants.VirtualExcludes...)
	if m.Catalog != nil {
		candidates = append(candidates, m.Catalog.BaseDir())
	}
	candidates = append(candidates, m.opts.Exclude...)

	var out []string
	seen := map[string]struct{}{}
	for _, ex := range candidates {
		if ex == "" {
			continue
		}
		if strings.HasPrefix(ex, "/") && containsAny(ex, paths) {
			m.Log.Debug("exclude dropped, covers an included path", zap.String("exclude", ex))
			continue
		}
		if _, ok := seen[ex]; ok {
			continue
		}
		seen[ex] = struct{}{}
		out = append(out, ex)
	}
	return out
}

func containsAny(parent string, paths []string) bool {
	for _, p := range paths {
		if utils.IsSubPath(parent, p) {
			return true
		}
	}
	return false
}

// Create archives the path set of opts.Kind and records it. On any failure
// the staging directory is discarded and no record is left behind.
func (m *SnapshotManager) Create(ctx context.Context, opts CreateOptions) (*Snapshot, error) {
	paths, err := m.BasePaths(opts.Kind)
	if err != nil {
		return nil, err
	}
	var removable []string
	if opts.IncludeRemovable {
		removable, err = m.selectRemovable()
		if err != nil {
			return nil, err
		}
		paths = utils.Unique(append(paths, removable...))
	}
	exclude := m.Excludes(paths)

	unlock, err := m.Catalog.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := m.Clock()
	name := NewName(opts.Kind, now, m.Catalog.Exists)
	staging, err := m.Catalog.Begin(name)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := staging.Abort(); err != nil {
			m.Log.Warn("could not remove staging directory", zap.String("name", name), zap.Error(err))
		}
	}()

	m.Log.Info("creating restore point",
		zap.String("name", name),
		zap.String("type", string(opts.Kind)),
		zap.Strings("paths", paths),
		zap.Strings("exclude", exclude),
	)

	estimate := m.estimate(paths, exclude)
	m.checkFreeSpace(estimate)

	dest, err := staging.ArchiveWriter()
	if err != nil {
		return nil, fmt.Errorf("opening archive for '%s': %w", name, err)
	}
	diag, err := staging.CreateLog(constants.BackupLogFile)
	if err != nil {
		return nil, fmt.Errorf("opening backup log for '%s': %w", name, err)
	}
	progress := m.newProgress("Archiving", estimate)
	written, err := m.Archiver.Archive(ctx, ArchiveRequest{
		Paths:       paths,
		Exclude:     exclude,
		Destination: dest,
		Progress:    progress,
		Diagnostics: diag,
		Root:        m.opts.Root,
	})
	progress.Finish()
	_ = diag.Close()
	if err != nil {
		return nil, fmt.Errorf("creating restore point '%s': %w", name, err)
	}
	if written == 0 {
		return nil, fmt.Errorf("creating restore point '%s': %w", name, ErrEmptyArchive)
	}

	rec := &Snapshot{
		Kind:           opts.Kind,
		CreatedAt:      now.UTC(),
		IncludedPaths:  paths,
		RemovablePaths: removable,
	}
	if err := staging.Commit(rec); err != nil {
		return nil, fmt.Errorf("creating restore point '%s': %w", name, err)
	}
	committed = true
	m.Log.Info("restore point created", zap.String("name", rec.Name), zap.Int64("size", rec.SizeBytes))
	return rec, nil
}

// estimate never fails; an unknown size disables progress.
func (m *SnapshotManager) estimate(paths, exclude []string) int64 {
	if m.Estimator == nil {
		return 0
	}
	size, err := m.Estimator.Estimate(paths, exclude)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrEstimation, err)
		m.UX.Warn("could not estimate size, progress disabled: %v", err)
		return 0
	}
	m.Log.Debug("estimated size", zap.Int64("bytes", size))
	return size
}

func (m *SnapshotManager) checkFreeSpace(estimate int64) {
	if m.FreeSpace == nil || estimate <= 0 {
		return
	}
	free, err := m.FreeSpace(m.Catalog.BaseDir())
	if err != nil {
		m.Log.Debug("free space check skipped", zap.Error(err))
		return
	}
	if uint64(estimate) > free {
		m.UX.Warn("source data (%s) exceeds free space in %s (%s); the archive may not fit",
			humanize.IBytes(uint64(estimate)), m.Catalog.BaseDir(), humanize.IBytes(free))
	}
}

func (m *SnapshotManager) newProgress(task string, total int64) *status.Progress {
	w := m.UX.Writer()
	return status.NewProgress(w, task, total, status.Enabled(w, total, m.opts.Progress))
}

// selectRemovable asks the operator which removable volumes to include.
func (m *SnapshotManager) selectRemovable() ([]string, error) {
	if m.Devices == nil {
		return nil, nil
	}
	volumes := m.Devices.ListRemovableVolumes()
	if len(volumes) == 0 {
		m.UX.Warn("no removable volumes found, continuing without them")
		return nil, nil
	}
	m.UX.PrintToUser("Removable volumes:")
	for i, v := range volumes {
		m.UX.PrintToUser("  %d) %s", i+1, v)
	}
	answer, err := m.Prompt.CaptureStringAllowEmpty(
		fmt.Sprintf("Volumes to include (numbers separated by commas, '%s', or empty for none)", constants.SelectAll))
	if err != nil {
		if prompts.IsAbort(err) {
			return nil, ErrCancelled
		}
		return nil, err
	}
	selected, invalid := ParseSelection(answer, volumes)
	for _, tok := range invalid {
		m.UX.Warn("invalid selection '%s' skipped", tok)
	}
	return selected, nil
}

// ParseSelection resolves an operator answer against volumes. The answer is
// "all" or a comma separated list of 1-based indices; bad tokens are
// returned in invalid and otherwise ignored.
func ParseSelection(answer string, volumes []string) (selected, invalid []string) {
	answer = strings.TrimSpace(answer)
	if strings.EqualFold(answer, constants.SelectAll) {
		return append([]string(nil), volumes...), nil
	}
	for _, tok := range utils.SplitSelection(answer) {
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 1 || idx > len(volumes) {
			invalid = append(invalid, tok)
			continue
		}
		selected = append(selected, volumes[idx-1])
	}
	if len(selected) > 0 {
		selected = utils.Unique(selected)
	}
	return selected, invalid
}

// List returns all valid records, newest first. Unreadable records are
// skipped with a warning.
func (m *SnapshotManager) List() []Snapshot {
	var out []Snapshot
	for s := range m.Catalog.Enumerate() {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name > out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Orphans lists leftovers that 'repair' would remove.
func (m *SnapshotManager) Orphans() []Orphan {
	orphans, err := m.Catalog.Orphans()
	if err != nil {
		m.Log.Warn("could not scan for orphaned data", zap.Error(err))
		return nil
	}
	return orphans
}

// lookup resolves name or returns a *NotFoundError listing what exists.
func (m *SnapshotManager) lookup(name string) (*Snapshot, error) {
	rec, err := m.Catalog.Get(name)
	if err == nil {
		return rec, nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		nf.Available = m.List()
	}
	return nil, err
}

// confirmPhrase requires the operator to type the exact confirmation phrase.
func (m *SnapshotManager) confirmPhrase() error {
	answer, err := m.Prompt.CaptureStringAllowEmpty(
		fmt.Sprintf("Type %s to continue", constants.ConfirmPhrase))
	if err != nil {
		if prompts.IsAbort(err) {
			return ErrCancelled
		}
		return err
	}
	if answer != constants.ConfirmPhrase {
		m.Log.Info("confirmation declined")
		return ErrCancelled
	}
	return nil
}

// PrintDetails writes the record summary shown before destructive actions.
func (m *SnapshotManager) PrintDetails(rec *Snapshot) {
	m.UX.PrintToUser("Name:    %s", rec.Name)
	m.UX.PrintToUser("Type:    %s", rec.Kind)
	m.UX.PrintToUser("Created: %s", rec.CreatedAt.Local().Format(constants.DisplayLayout))
	m.UX.PrintToUser("Size:    %s", humanize.IBytes(uint64(rec.SizeBytes)))
	m.UX.PrintToUser("Paths:   %s", strings.Join(rec.IncludedPaths, ", "))
}

// Restore extracts a snapshot over the live filesystem. Extraction is not
// transactional: a failure part way leaves files partially overwritten.
func (m *SnapshotManager) Restore(ctx context.Context, name string, force bool) error {
	unlock, err := m.Catalog.RLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := m.lookup(name)
	if err != nil {
		return err
	}

	m.UX.PrintLineSeparator()
	m.UX.Caution("WARNING: restoring overwrites existing files in place.")
	m.UX.Caution("Files created after this restore point are left untouched.")
	m.UX.Caution("Restoring from a live or rescue environment is recommended.")
	m.UX.PrintLineSeparator()
	m.PrintDetails(rec)

	if !force {
		if err := m.confirmPhrase(); err != nil {
			return err
		}
	}

	src, err := m.Catalog.OpenArchive(name)
	if err != nil {
		return fmt.Errorf("opening archive of '%s': %w", name, err)
	}
	defer src.Close()

	diag, err := m.Catalog.CreateLog(name, constants.RestoreLogFile)
	if err != nil {
		return fmt.Errorf("opening restore log for '%s': %w", name, err)
	}
	defer diag.Close()

	m.Log.Info("restoring", zap.String("name", name), zap.String("root", m.opts.Root))
	progress := m.newProgress("Restoring", rec.SizeBytes)
	err = m.Archiver.Extract(ctx, ExtractRequest{
		Source:      src,
		Root:        m.opts.Root,
		Progress:    progress,
		Diagnostics: diag,
	})
	progress.Finish()
	if err != nil {
		return fmt.Errorf("restoring '%s' (the filesystem may be partially restored): %w", name, err)
	}
	m.Log.Info("restore complete", zap.String("name", name))
	return nil
}

// Delete removes a snapshot after confirmation.
func (m *SnapshotManager) Delete(ctx context.Context, name string, force bool) error {
	unlock, err := m.Catalog.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	rec, err := m.lookup(name)
	if err != nil {
		return err
	}
	m.UX.Caution("This permanently deletes the following restore point:")
	m.PrintDetails(rec)
	if !force {
		if err := m.confirmPhrase(); err != nil {
			return err
		}
	}
	if err := m.Catalog.Remove(name); err != nil {
		return err
	}
	m.Log.Info("restore point deleted", zap.String("name", name))
	return nil
}

// Repair removes orphaned data left by interrupted or partial operations.
// It returns the leftovers that were removed.
func (m *SnapshotManager) Repair(ctx context.Context, force bool) ([]Orphan, error) {
	unlock, err := m.Catalog.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	orphans, err := m.Catalog.Orphans()
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", m.Catalog.BaseDir(), err)
	}
	if len(orphans) == 0 {
		return nil, nil
	}
	m.UX.PrintToUser("Orphaned data:")
	for _, o := range orphans {
		m.UX.PrintToUser("  %s (%s, %s)", o.Name, o.Reason, humanize.IBytes(uint64(o.Size)))
	}
	if !force {
		ok, err := m.Prompt.CaptureYesNo("Remove the data listed above?")
		if err != nil {
			if prompts.IsAbort(err) {
				return nil, ErrCancelled
			}
			return nil, err
		}
		if !ok {
			return nil, ErrCancelled
		}
	}
	var (
		removed []Orphan
		errs    []error
	)
	for _, o := range orphans {
		if err := m.Catalog.RemoveOrphan(o); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", o.Path, err))
			continue
		}
		m.Log.Info("orphan removed", zap.String("path", o.Path))
		removed = append(removed, o)
	}
	return removed, errors.Join(errs...)
}

// Prune deletes the oldest snapshots so that at most keep remain. It
// returns the deleted records.
func (m *SnapshotManager) Prune(ctx context.Context, keep int, force bool) ([]Snapshot, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	unlock, err := m.Catalog.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	all := m.List()
	if len(all) <= keep {
		return nil, nil
	}
	victims := all[keep:]
	m.UX.Caution("The following %d restore point(s) will be deleted:", len(victims))
	for _, s := range victims {
		m.UX.PrintToUser("  %s (%s)", s.Name, s.CreatedAt.Local().Format(constants.DisplayLayout))
	}
	if !force {
		if err := m.confirmPhrase(); err != nil {
			return nil, err
		}
	}
	var (
		deleted []Snapshot
		errs    []error
	)
	for _, s := range victims {
		if err := m.Catalog.Remove(s.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		m.Log.Info("restore point pruned", zap.String("name", s.Name))
		deleted = append(deleted, s)
	}
	return deleted, errors.Join(errs...)
}
