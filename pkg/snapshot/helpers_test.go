// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/spf13/afero"
)

var testEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeArchiver struct {
	archiveErr error
	extractErr error
	// cancel, if set, is called mid-archive to simulate an interrupt.
	cancel context.CancelFunc

	archived  []ArchiveRequest
	extracted [][]byte
}

func (f *fakeArchiver) Archive(ctx context.Context, req ArchiveRequest) (int64, error) {
	f.archived = append(f.archived, req)
	_, _ = req.Destination.Write([]byte("partial"))
	if f.cancel != nil {
		f.cancel()
		return 0, ctx.Err()
	}
	if f.archiveErr != nil {
		_, _ = fmt.Fprintln(req.Diagnostics, "tar: /etc/shadow: Cannot open")
		return 0, f.archiveErr
	}
	data := []byte(":" + strings.Join(req.Paths, ","))
	if req.Progress != nil {
		_, _ = req.Progress.Write(data)
	}
	n, err := req.Destination.Write(data)
	return int64(n) + int64(len("partial")), err
}

func (f *fakeArchiver) Extract(_ context.Context, req ExtractRequest) error {
	data, err := io.ReadAll(req.Source)
	if err != nil {
		return err
	}
	f.extracted = append(f.extracted, data)
	if f.extractErr != nil {
		_, _ = fmt.Fprintln(req.Diagnostics, "tar: Exiting with failure status")
	}
	return f.extractErr
}

type fakeDevices struct {
	volumes []string
}

func (f *fakeDevices) ListRemovableVolumes() []string {
	return f.volumes
}

type fakeEstimator struct {
	size int64
	err  error
}

func (f *fakeEstimator) Estimate(_, _ []string) (int64, error) {
	return f.size, f.err
}

// steppingClock returns testEpoch and advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	next := testEpoch
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

type testEnv struct {
	manager  *SnapshotManager
	catalog  *Catalog
	archiver *fakeArchiver
	devices  *fakeDevices
	out      *bytes.Buffer
	baseDir  string
}

func newTestEnv(baseDir string, prompt prompts.Prompter) *testEnv {
	out := &bytes.Buffer{}
	log := luxlog.NewNoOpLogger()
	cat := NewCatalog(afero.NewOsFs(), baseDir, log)
	env := &testEnv{
		catalog:  cat,
		archiver: &fakeArchiver{},
		devices:  &fakeDevices{},
		out:      out,
		baseDir:  baseDir,
	}
	env.manager = NewSnapshotManager(Deps{
		Catalog:   cat,
		Archiver:  env.archiver,
		Devices:   env.devices,
		Estimator: &fakeEstimator{size: 64},
		Prompt:    prompt,
		UX:        ux.NewUserLog(log, out, true),
		Log:       log,
		Clock:     steppingClock(time.Minute),
	}, Options{
		SystemPaths: []string{"/etc"},
		FullPaths:   []string{"/etc", "/home"},
	})
	return env
}

// writeRaw plants a snapshot directory bypassing the catalog.
func writeRaw(baseDir, name, metadata string, archive []byte) error {
	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	if metadata != "" {
		if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadata), 0o600); err != nil {
			return err
		}
	}
	if archive != nil {
		return os.WriteFile(filepath.Join(dir, "backup.tar.gz"), archive, 0o600)
	}
	return nil
}

// failingFs fails Remove for one path.
type failingFs struct {
	afero.Fs
	failRemove string
}

func (f *failingFs) Remove(name string) error {
	if name == f.failRemove {
		return &os.PathError{Op: "remove", Path: name, Err: errors.New("device or resource busy")}
	}
	return f.Fs.Remove(name)
}

// entryNames lists base dir entries, hidden ones included.
func entryNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
