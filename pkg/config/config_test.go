// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)
	v := viper.New()
	v.AddConfigPath(t.TempDir())

	cfg, err := Load(v, "")
	require.NoError(err)
	require.Equal(constants.DefaultBaseDir, cfg.BaseDir)
	require.Equal([]string{"/etc"}, cfg.SystemPaths)
	require.Equal([]string{"/etc", "/home"}, cfg.FullPaths)
	require.Equal(constants.DefaultCompressionLevel, cfg.CompressionLevel)
	require.True(cfg.Progress)
}

func TestLoadFileAndEnv(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "base-dir: /srv/restore\nexclude:\n  - '*.cache'\ncompression-level: 42\n"
	require.NoError(os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("RESTOREPOINT_KEEP", "9")

	cfg, err := Load(viper.New(), path)
	require.NoError(err)
	require.Equal("/srv/restore", cfg.BaseDir)
	require.Equal([]string{"*.cache"}, cfg.Exclude)
	// out of range levels fall back to the default
	require.Equal(constants.DefaultCompressionLevel, cfg.CompressionLevel)
	require.Equal(9, cfg.Keep)
	require.Equal(path, cfg.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
