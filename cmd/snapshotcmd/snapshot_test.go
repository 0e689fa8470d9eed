// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/luxfi/restorepoint/pkg/application"
	"github.com/luxfi/restorepoint/pkg/config"
	"github.com/luxfi/restorepoint/pkg/logging"
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *bytes.Buffer {
	t.Helper()
	baseDir := filepath.Join(t.TempDir(), "store")
	out := &bytes.Buffer{}
	log := logging.Nop()
	ap := application.New()
	ap.Setup(baseDir, log, ux.NewUserLog(log.Logger, out, true), &config.Config{
		BaseDir:          baseDir,
		SystemPaths:      []string{"/etc"},
		FullPaths:        []string{"/etc", "/home"},
		CompressionLevel: 6,
		TarPath:          "tar",
		Keep:             1,
	}, prompts.NewNonInteractivePrompter())
	NewCmds(ap)
	return out
}

func plant(t *testing.T, name string, created time.Time) {
	t.Helper()
	cat := app.Catalog()
	st, err := cat.Begin(name)
	require.NoError(t, err)
	w, err := st.ArchiveWriter()
	require.NoError(t, err)
	_, err = w.Write([]byte("archive"))
	require.NoError(t, err)
	require.NoError(t, st.Commit(&snapshot.Snapshot{Kind: snapshot.KindSystem, CreatedAt: created, IncludedPaths: []string{"/etc"}}))
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmds := NewCmds(app)
	for _, c := range cmds {
		if c.Name() == args[0] {
			c.SetArgs(args[1:])
			return c.ExecuteContext(context.Background())
		}
	}
	t.Fatalf("unknown command %s", args[0])
	return nil
}

func TestTableRows(t *testing.T) {
	rows := tableRows([]snapshot.Snapshot{{
		Name:      "system_20240101_120000",
		Kind:      snapshot.KindSystem,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local),
		SizeBytes: 2048,
	}})
	require.Equal(t, [][]string{{"system_20240101_120000", "system", "2024-01-01 12:00", "2.0 KiB"}}, rows)
}

func TestListEmpty(t *testing.T) {
	out := setupApp(t)
	require.NoError(t, run(t, "list"))
	require.Contains(t, out.String(), "No restore points found")
}

func TestListAndDelete(t *testing.T) {
	require := require.New(t)
	out := setupApp(t)
	plant(t, "system_20240101_120000", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(run(t, "list"))
	require.Contains(out.String(), "system_20240101_120000")

	// non-interactive without --force refuses to prompt
	err := run(t, "delete", "system_20240101_120000")
	require.ErrorIs(err, prompts.ErrNonInteractive)
	require.Len(app.Manager().List(), 1)

	require.NoError(run(t, "delete", "system_20240101_120000", "--force"))
	require.Contains(out.String(), "Restore point 'system_20240101_120000' deleted")
	require.Empty(app.Manager().List())
}

func TestDeleteUnknownShowsAvailable(t *testing.T) {
	out := setupApp(t)
	plant(t, "full_20240101_120000", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	err := run(t, "delete", "nope", "--force")
	require.ErrorIs(t, err, snapshot.ErrNotFound)
	require.Contains(t, out.String(), "Available restore points:")
	require.Contains(t, out.String(), "full_20240101_120000")
}

func TestPruneUsesConfiguredKeep(t *testing.T) {
	require := require.New(t)
	out := setupApp(t)
	plant(t, "system_20240101_120000", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	plant(t, "system_20240102_120000", time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC))

	require.NoError(run(t, "prune", "--force"))
	require.True(strings.Contains(out.String(), "Deleted 1 restore point(s), 1 kept"))
	list := app.Manager().List()
	require.Len(list, 1)
	require.Equal("system_20240102_120000", list[0].Name)
}
