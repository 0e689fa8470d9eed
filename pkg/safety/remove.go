// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package safety guards recursive deletion inside the restore point store.
package safety

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/spf13/afero"
)

// Policy defines which paths are allowed or denied for deletion.
type Policy struct {
	BaseDir       string   // The restore point store (e.g., /var/backups/linux_restore_points)
	AllowPrefixes []string // absolute paths allowed to delete under
	DenyPrefixes  []string // absolute paths never deletable
}

// DefaultPolicy allows deleting entries of baseDir and protects the
// invocation logs and the catalog lock.
func DefaultPolicy(baseDir string) Policy {
	baseDir = filepath.Clean(baseDir)
	return Policy{
		BaseDir:       baseDir,
		AllowPrefixes: []string{baseDir},
		DenyPrefixes: []string{
			filepath.Join(baseDir, constants.LogDir),       // Invocation logs - NEVER delete
			filepath.Join(baseDir, constants.LockFileName), // Catalog lock - NEVER delete
		},
	}
}

// Check returns an error if target must not be removed under policy. The
// base directory itself is never removable.
func Check(policy Policy, target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if abs == filepath.Clean(policy.BaseDir) || abs == "/" {
		return fmt.Errorf("SAFETY: refusing to delete %s", abs)
	}

	// First check deny list - these paths are NEVER deletable
	for _, d := range policy.DenyPrefixes {
		if isUnderOrEqual(abs, d) {
			return fmt.Errorf("refusing to delete protected path: %s (protected by policy)", abs)
		}
	}

	// Then check allow list - path must be under an allowed prefix
	for _, a := range policy.AllowPrefixes {
		if isUnderOrEqual(abs, a) {
			return nil
		}
	}
	return fmt.Errorf("refusing to delete path outside the store: %s (not in allowed list)", abs)
}

// RemoveAll removes target recursively from fs, respecting the policy.
func RemoveAll(fs afero.Fs, policy Policy, target string) error {
	if err := Check(policy, target); err != nil {
		return err
	}
	abs, _ := filepath.Abs(target)
	return fs.RemoveAll(abs)
}

// RemoveEntry removes a direct child of the base directory by name.
func RemoveEntry(fs afero.Fs, policy Policy, name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid entry name: %q", name)
	}
	if filepath.Base(name) != name || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("entry name cannot contain path separators: %s", name)
	}
	return RemoveAll(fs, policy, filepath.Join(policy.BaseDir, name))
}

// isUnderOrEqual returns true if path is equal to or under prefix.
func isUnderOrEqual(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

// IsProtected checks if a path is protected by the given policy.
func IsProtected(policy Policy, target string) bool {
	abs, err := filepath.Abs(target)
	if err != nil {
		return true // If we can't resolve, assume protected
	}
	for _, d := range policy.DenyPrefixes {
		if isUnderOrEqual(abs, d) {
			return true
		}
	}
	return false
}
