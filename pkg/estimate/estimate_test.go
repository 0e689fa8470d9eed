// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package estimate

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	files := map[string]int{
		"/etc/hosts":              100,
		"/etc/ssh/sshd_config":    50,
		"/home/alice/notes.txt":   1000,
		"/home/alice/.cache/blob": 5000,
		"/home/alice/tmp.swp":     7,
		"/var/backups/rp/old.tgz": 9999,
	}
	for name, size := range files {
		require.NoError(t, afero.WriteFile(fs, name, make([]byte, size), 0o600))
	}
	return fs
}

func TestEstimate(t *testing.T) {
	e := New(newFs(t), nil)

	size, err := e.Estimate([]string{"/etc"}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(150), size)

	size, err = e.Estimate([]string{"/etc", "/home"}, []string{"/home/alice/.cache", "*.swp"})
	require.NoError(t, err)
	require.Equal(t, int64(1150), size)
}

func TestEstimateMissingRootFails(t *testing.T) {
	e := New(newFs(t), nil)
	size, err := e.Estimate([]string{"/etc", "/nonexistent"}, nil)
	require.Error(t, err)
	require.Zero(t, size)
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		expected bool
	}{
		{"/proc/1/status", []string{"/proc"}, true},
		{"/processes", []string{"/proc"}, false},
		{"/dev/sda", []string{"/dev/*"}, true},
		{"/dev", []string{"/dev/*"}, false},
		{"/home/a/x.swp", []string{"*.swp"}, true},
		{"/home/a/x.txt", []string{"*.swp", ""}, false},
		{"/var/backups/linux_restore_points/a/backup.tar.gz", []string{"/var/backups/linux_restore_points"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			require.Equal(t, tc.expected, Excluded(tc.path, tc.patterns))
		})
	}
}
