// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package application

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/luxfi/restorepoint/pkg/config"
	"github.com/luxfi/restorepoint/pkg/logging"
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *RestorePoint {
	t.Helper()
	baseDir := filepath.Join(t.TempDir(), "store")
	conf, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	conf.BaseDir = baseDir

	log := logging.Nop()
	ap := New()
	ap.Setup(baseDir, log, ux.NewUserLog(log.Logger, &bytes.Buffer{}, true), conf, prompts.NewNonInteractivePrompter())
	return ap
}

func TestDirs(t *testing.T) {
	require := require.New(t)
	ap := newTestApp(t)

	require.Equal(filepath.Join(ap.GetBaseDir(), "logs"), ap.GetLogsDir())
	require.Empty(ap.GetLogPath())
	require.NoError(ap.Close())
}

func TestManagerWiring(t *testing.T) {
	require := require.New(t)
	ap := newTestApp(t)

	require.Equal(ap.GetBaseDir(), ap.Catalog().BaseDir())
	require.Equal(6, ap.Archiver().Level)
	require.Equal("tar", ap.Archiver().Path)

	m := ap.Manager()
	require.NotNil(m)
	require.Empty(m.List())

	paths, err := m.BasePaths("full")
	require.NoError(err)
	require.Equal([]string{"/etc", "/home"}, paths)
	require.Contains(m.Excludes(paths), ap.GetBaseDir())
}
