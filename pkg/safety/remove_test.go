// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func newStore(t *testing.T) (afero.Fs, Policy) {
	t.Helper()
	baseDir := filepath.Join(t.TempDir(), "restore_points")
	if err := os.MkdirAll(filepath.Join(baseDir, "logs"), 0o700); err != nil {
		t.Fatal(err)
	}
	return afero.NewOsFs(), DefaultPolicy(baseDir)
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy("/var/backups/linux_restore_points/")

	if policy.BaseDir != "/var/backups/linux_restore_points" {
		t.Errorf("expected cleaned base dir, got %q", policy.BaseDir)
	}
	if len(policy.AllowPrefixes) == 0 {
		t.Error("expected allow prefixes")
	}
	if len(policy.DenyPrefixes) == 0 {
		t.Error("expected deny prefixes")
	}
}

func TestRemoveAllAllowed(t *testing.T) {
	fs, policy := newStore(t)

	snapDir := filepath.Join(policy.BaseDir, "system_20240101_120000")
	if err := os.MkdirAll(snapDir, 0o700); err != nil {
		t.Fatal(err)
	}

	if err := RemoveAll(fs, policy, snapDir); err != nil {
		t.Errorf("expected RemoveAll to succeed for allowed path, got: %v", err)
	}
	if _, err := os.Stat(snapDir); !os.IsNotExist(err) {
		t.Error("expected snapshot directory to be deleted")
	}
}

func TestRemoveAllDenied(t *testing.T) {
	fs, policy := newStore(t)

	for _, target := range []string{
		filepath.Join(policy.BaseDir, "logs"),
		filepath.Join(policy.BaseDir, "logs", "restorepoint_create.log"),
		filepath.Join(policy.BaseDir, ".lock"),
		policy.BaseDir,
		"/",
	} {
		if err := RemoveAll(fs, policy, target); err == nil {
			t.Errorf("expected RemoveAll to fail for %s", target)
		}
	}
	if _, err := os.Stat(filepath.Join(policy.BaseDir, "logs")); err != nil {
		t.Errorf("expected logs to survive: %v", err)
	}
}

func TestRemoveAllNotInAllowList(t *testing.T) {
	fs, policy := newStore(t)

	randomDir := filepath.Join(filepath.Dir(policy.BaseDir), "random")
	if err := os.MkdirAll(randomDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := RemoveAll(fs, policy, randomDir); err == nil {
		t.Error("expected RemoveAll to fail for path not in allow list")
	}
}

func TestRemoveEntry(t *testing.T) {
	fs, policy := newStore(t)

	staging := filepath.Join(policy.BaseDir, ".full_20240101_120000.partial")
	if err := os.MkdirAll(staging, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := RemoveEntry(fs, policy, ".full_20240101_120000.partial"); err != nil {
		t.Errorf("expected RemoveEntry to succeed, got: %v", err)
	}
	if _, err := os.Stat(staging); !os.IsNotExist(err) {
		t.Error("expected staging directory to be deleted")
	}
}

func TestRemoveEntryInvalidName(t *testing.T) {
	fs, policy := newStore(t)

	for _, name := range []string{
		"",
		".",
		"..",
		"../escape",
		"logs/../escape",
		"/absolute",
		"logs",
	} {
		if err := RemoveEntry(fs, policy, name); err == nil {
			t.Errorf("expected RemoveEntry to fail for invalid name %q", name)
		}
	}
}

func TestIsProtected(t *testing.T) {
	_, policy := newStore(t)

	if !IsProtected(policy, filepath.Join(policy.BaseDir, "logs")) {
		t.Error("expected logs to be protected")
	}
	if !IsProtected(policy, filepath.Join(policy.BaseDir, ".lock")) {
		t.Error("expected lock file to be protected")
	}
	if IsProtected(policy, filepath.Join(policy.BaseDir, "system_20240101_120000")) {
		t.Error("expected snapshot directory to not be protected")
	}
}
