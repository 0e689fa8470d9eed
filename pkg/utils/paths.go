// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"path/filepath"
	"strings"
)

// IsSubPath reports whether path equals parent or lies below it.
func IsSubPath(parent, path string) bool {
	parent = filepath.Clean(parent)
	path = filepath.Clean(path)
	if parent == path {
		return true
	}
	if parent == "/" {
		return strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, parent+string(filepath.Separator))
}

// Overlaps reports whether one of a, b contains the other.
func Overlaps(a, b string) bool {
	return IsSubPath(a, b) || IsSubPath(b, a)
}

// Unique returns the cleaned paths in their original order without duplicates.
func Unique(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
