// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"fmt"
	"time"
)

// Kind selects the base path set of a snapshot.
type Kind string

const (
	// KindSystem covers configuration only.
	KindSystem Kind = "system"
	// KindFull additionally covers user data.
	KindFull Kind = "full"
)

// Kinds lists the valid kinds in display order.
var Kinds = []Kind{KindSystem, KindFull}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSystem, KindFull:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid snapshot type %q (expected %q or %q)", s, KindSystem, KindFull)
	}
}

// Snapshot is the catalog record of one archive.
type Snapshot struct {
	Name      string    `json:"name"`
	Kind      Kind      `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	// Timestamp is the local creation time as YYYYMMDD_HHMMSS. Records
	// written by linux_restore_point carry only this field.
	Timestamp string `json:"timestamp,omitempty"`
	// IncludedPaths is the exact path set archived, removable volumes included.
	IncludedPaths []string `json:"paths"`
	// RemovablePaths is the subset of IncludedPaths picked from removable volumes.
	RemovablePaths []string `json:"usb_paths,omitempty"`
	SizeBytes      int64    `json:"size"`
	// ArchiveLocation is resolved from the catalog on load, never trusted from disk.
	ArchiveLocation string `json:"-"`
}
