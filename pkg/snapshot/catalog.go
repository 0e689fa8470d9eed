// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/safety"
	"github.com/luxfi/restorepoint/pkg/utils"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Catalog maps snapshot names to their records and archives. Each snapshot
// lives in its own directory so one bad record cannot hide the others.
type Catalog struct {
	fs      afero.Fs
	baseDir string
	policy  safety.Policy
	log     luxlog.Logger

	// OnCorrupt, if set, is told about every record skipped by Enumerate.
	OnCorrupt func(*CorruptRecordError)
}

// NewCatalog returns a catalog rooted at baseDir on fs.
func NewCatalog(fs afero.Fs, baseDir string, log luxlog.Logger) *Catalog {
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	baseDir = filepath.Clean(baseDir)
	return &Catalog{fs: fs, baseDir: baseDir, policy: safety.DefaultPolicy(baseDir), log: log}
}

// BaseDir returns the catalog's storage directory.
func (c *Catalog) BaseDir() string {
	return c.baseDir
}

// Init creates the access-restricted base directory.
func (c *Catalog) Init() error {
	if err := c.fs.MkdirAll(c.baseDir, constants.ReadWriteExecuteUserOnly); err != nil {
		return fmt.Errorf("failed creating catalog directory %s: %w", c.baseDir, err)
	}
	return nil
}

func (c *Catalog) dir(name string) string {
	return filepath.Join(c.baseDir, name)
}

func (c *Catalog) stagingDir(name string) string {
	return filepath.Join(c.baseDir, constants.StagingPrefix+name+constants.StagingSuffix)
}

// ArchivePath returns where the archive of name is stored.
func (c *Catalog) ArchivePath(name string) string {
	return filepath.Join(c.dir(name), constants.ArchiveFileName)
}

// LogPath returns the path of a per-snapshot diagnostics file.
func (c *Catalog) LogPath(name, file string) string {
	return filepath.Join(c.dir(name), file)
}

// isReserved reports entries of the base directory that are never snapshots.
func isReserved(name string) bool {
	return name == constants.LogDir || strings.HasPrefix(name, constants.StagingPrefix)
}

// ValidateName rejects names that could escape the base directory or
// collide with reserved entries.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("restore point name cannot be empty")
	case name != filepath.Base(name) || strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("invalid restore point name %q", name)
	case isReserved(name):
		return fmt.Errorf("reserved restore point name %q", name)
	}
	return nil
}

// Exists reports whether name is taken, by a finished or an in-progress snapshot.
func (c *Catalog) Exists(name string) bool {
	for _, p := range []string{c.dir(name), c.stagingDir(name)} {
		if _, err := c.fs.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// Get returns the record for name. It never returns a record whose archive
// is missing or empty.
func (c *Catalog) Get(name string) (*Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return nil, &NotFoundError{Name: name}
	}
	info, err := c.fs.Stat(c.dir(name))
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Name: name}
	}
	return c.load(name)
}

func (c *Catalog) load(name string) (*Snapshot, error) {
	var rec Snapshot
	metaPath := filepath.Join(c.dir(name), constants.MetadataFile)
	if err := utils.ReadJSON(c.fs, metaPath, &rec); err != nil {
		return nil, &CorruptRecordError{Name: name, Reason: "unreadable metadata", Err: err}
	}
	if rec.Name != name {
		return nil, &CorruptRecordError{Name: name, Reason: fmt.Sprintf("metadata names %q", rec.Name)}
	}
	if rec.CreatedAt.IsZero() && rec.Timestamp != "" {
		created, err := time.ParseInLocation(constants.TimestampLayout, rec.Timestamp, time.Local)
		if err != nil {
			return nil, &CorruptRecordError{Name: name, Reason: "invalid timestamp", Err: err}
		}
		rec.CreatedAt = created.UTC()
	}
	if rec.CreatedAt.IsZero() {
		return nil, &CorruptRecordError{Name: name, Reason: "missing creation time"}
	}
	if _, err := ParseKind(string(rec.Kind)); err != nil {
		return nil, &CorruptRecordError{Name: name, Reason: "invalid type", Err: err}
	}
	info, err := c.fs.Stat(c.ArchivePath(name))
	if err != nil {
		return nil, &CorruptRecordError{Name: name, Reason: "archive missing", Err: err}
	}
	if info.Size() == 0 {
		return nil, &CorruptRecordError{Name: name, Reason: "archive empty"}
	}
	rec.ArchiveLocation = c.ArchivePath(name)
	return &rec, nil
}

// entries returns the candidate snapshot directory names, sorted.
func (c *Catalog) entries() ([]string, error) {
	infos, err := afero.ReadDir(c.fs, c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if !info.IsDir() || isReserved(info.Name()) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Enumerate yields every valid record. Records that fail to load are
// logged and skipped.
func (c *Catalog) Enumerate() iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		names, err := c.entries()
		if err != nil {
			c.log.Warn("could not read catalog directory", zap.String("dir", c.baseDir), zap.Error(err))
			return
		}
		for _, name := range names {
			rec, err := c.load(name)
			if err != nil {
				var corrupt *CorruptRecordError
				if !errors.As(err, &corrupt) {
					corrupt = &CorruptRecordError{Name: name, Reason: "unreadable", Err: err}
				}
				c.log.Warn("skipping corrupt restore point", zap.String("name", name), zap.Error(err))
				if c.OnCorrupt != nil {
					c.OnCorrupt(corrupt)
				}
				continue
			}
			if !yield(*rec) {
				return
			}
		}
	}
}

// Staging is an in-progress snapshot, invisible to Get and Enumerate until
// Commit succeeds.
type Staging struct {
	c       *Catalog
	name    string
	dir     string
	archive afero.File
	done    bool
}

// Begin reserves name and creates its staging directory.
func (c *Catalog) Begin(name string) (*Staging, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if c.Exists(name) {
		return nil, fmt.Errorf("restore point '%s' already exists", name)
	}
	dir := c.stagingDir(name)
	if err := c.fs.MkdirAll(dir, constants.ReadWriteExecuteUserOnly); err != nil {
		return nil, fmt.Errorf("failed creating staging directory: %w", err)
	}
	return &Staging{c: c, name: name, dir: dir}, nil
}

// Name returns the reserved snapshot name.
func (s *Staging) Name() string {
	return s.name
}

// ArchiveWriter opens the staging archive for writing.
func (s *Staging) ArchiveWriter() (io.Writer, error) {
	if s.archive != nil {
		return s.archive, nil
	}
	f, err := s.c.fs.OpenFile(filepath.Join(s.dir, constants.ArchiveFileName),
		os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.WriteReadUserOnlyPerms)
	if err != nil {
		return nil, err
	}
	s.archive = f
	return f, nil
}

// CreateLog creates a diagnostics file inside the staging directory.
func (s *Staging) CreateLog(file string) (afero.File, error) {
	return s.c.fs.OpenFile(filepath.Join(s.dir, file),
		os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.WriteReadUserOnlyPerms)
}

// closeArchive syncs and closes the archive and returns its size.
func (s *Staging) closeArchive() (int64, error) {
	if s.archive == nil {
		return 0, ErrEmptyArchive
	}
	f := s.archive
	s.archive = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	info, err := s.c.fs.Stat(filepath.Join(s.dir, constants.ArchiveFileName))
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, ErrEmptyArchive
	}
	return info.Size(), nil
}

// Commit finalizes the archive, writes rec and publishes the snapshot.
// rec.SizeBytes is set from the archive on disk.
func (s *Staging) Commit(rec *Snapshot) error {
	if s.done {
		return errors.New("staging already finished")
	}
	size, err := s.closeArchive()
	if err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	rec.Name = s.name
	rec.SizeBytes = size
	if rec.Timestamp == "" && !rec.CreatedAt.IsZero() {
		rec.Timestamp = rec.CreatedAt.Local().Format(constants.TimestampLayout)
	}
	metaPath := filepath.Join(s.dir, constants.MetadataFile)
	if err := utils.WriteJSON(s.c.fs, metaPath, rec, constants.WriteReadUserOnlyPerms); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := s.c.fs.Rename(s.dir, s.c.dir(s.name)); err != nil {
		return fmt.Errorf("publishing restore point: %w", err)
	}
	s.done = true
	rec.ArchiveLocation = s.c.ArchivePath(s.name)
	return nil
}

// Abort discards the staging directory. It is a no-op after Commit.
func (s *Staging) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.archive != nil {
		_ = s.archive.Close()
		s.archive = nil
	}
	return safety.RemoveAll(s.c.fs, s.c.policy, s.dir)
}

// OpenArchive opens the archive of a recorded snapshot for reading.
func (c *Catalog) OpenArchive(name string) (afero.File, error) {
	return c.fs.Open(c.ArchivePath(name))
}

// CreateLog creates a diagnostics file in a recorded snapshot's directory.
func (c *Catalog) CreateLog(name, file string) (afero.File, error) {
	return c.fs.OpenFile(c.LogPath(name, file), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.WriteReadUserOnlyPerms)
}

// Remove deletes a snapshot. The archive goes first: if that fails the
// record stays and still points at a complete archive. If the record cannot
// be removed afterwards a *RepairNeededError is returned.
func (c *Catalog) Remove(name string) error {
	if _, err := c.Get(name); err != nil {
		return err
	}
	if err := c.fs.Remove(c.ArchivePath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing archive of '%s': %w", name, err)
	}
	metaPath := filepath.Join(c.dir(name), constants.MetadataFile)
	if err := c.fs.Remove(metaPath); err != nil && !os.IsNotExist(err) {
		return &RepairNeededError{Name: name, Path: metaPath, Err: err}
	}
	if err := safety.RemoveAll(c.fs, c.policy, c.dir(name)); err != nil {
		return &RepairNeededError{Name: name, Path: c.dir(name), Err: err}
	}
	return nil
}

// Orphan is a leftover in the base directory that is not a valid snapshot.
type Orphan struct {
	Name   string
	Path   string
	Reason string
	Size   int64
}

// Orphans lists staging leftovers and snapshot directories whose record
// cannot be loaded. These are invisible to Enumerate.
func (c *Catalog) Orphans() ([]Orphan, error) {
	infos, err := afero.ReadDir(c.fs, c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var orphans []Orphan
	for _, info := range infos {
		name := info.Name()
		path := filepath.Join(c.baseDir, name)
		if !info.IsDir() || safety.IsProtected(c.policy, path) {
			continue
		}
		if strings.HasPrefix(name, constants.StagingPrefix) {
			if strings.HasSuffix(name, constants.StagingSuffix) {
				orphans = append(orphans, Orphan{Name: name, Path: path, Reason: "interrupted create", Size: c.dirSize(path)})
			}
			continue
		}
		if _, err := c.load(name); err != nil {
			reason := err.Error()
			var corrupt *CorruptRecordError
			if errors.As(err, &corrupt) {
				reason = corrupt.Reason
			}
			orphans = append(orphans, Orphan{Name: name, Path: path, Reason: reason, Size: c.dirSize(path)})
		}
	}
	return orphans, nil
}

// RemoveOrphan deletes a leftover found by Orphans.
func (c *Catalog) RemoveOrphan(o Orphan) error {
	if o.Path != filepath.Join(c.baseDir, o.Name) {
		return fmt.Errorf("refusing to remove %s", o.Path)
	}
	return safety.RemoveEntry(c.fs, c.policy, o.Name)
}

// dirSize calculates the total size of a directory
func (c *Catalog) dirSize(path string) int64 {
	var size int64
	_ = afero.Walk(c.fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
