// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCancelled means the operator declined a confirmation. It is a
	// user decision, not a failure.
	ErrCancelled = errors.New("cancelled by operator")

	// ErrEstimation wraps size estimation failures; callers downgrade it to a warning.
	ErrEstimation = errors.New("size estimation failed")

	// ErrNotFound is matched by errors.Is for any *NotFoundError.
	ErrNotFound = errors.New("restore point not found")

	// ErrEmptyArchive is returned when the archiver succeeded but produced nothing.
	ErrEmptyArchive = errors.New("archiver produced an empty archive")
)

// NotFoundError reports a name with no catalog record, together with the
// records that do exist so the operator can pick a valid one.
type NotFoundError struct {
	Name      string
	Available []Snapshot
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("restore point '%s' not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Archive operations reported by ArchiveError.
const (
	OpArchive = "archive"
	OpExtract = "extract"
)

// ArchiveError is returned when the archiving tool exits non-zero. Output
// carries the tool's diagnostics verbatim.
type ArchiveError struct {
	Op     string
	Output string
	Err    error
}

func (e *ArchiveError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// IsArchiveFailed reports whether err is an archive (create) failure.
func IsArchiveFailed(err error) bool {
	var ae *ArchiveError
	return errors.As(err, &ae) && ae.Op == OpArchive
}

// IsExtractFailed reports whether err is an extract (restore) failure.
func IsExtractFailed(err error) bool {
	var ae *ArchiveError
	return errors.As(err, &ae) && ae.Op == OpExtract
}

// CorruptRecordError describes a catalog entry that cannot be exposed.
type CorruptRecordError struct {
	Name   string
	Reason string
	Err    error
}

func (e *CorruptRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt restore point '%s': %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt restore point '%s': %s", e.Name, e.Reason)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// RepairNeededError is returned when a delete removed part of a snapshot.
// The leftover is no longer listed; 'repair' cleans it up.
type RepairNeededError struct {
	Name string
	Path string
	Err  error
}

func (e *RepairNeededError) Error() string {
	return fmt.Sprintf("restore point '%s' was only partially removed (%s): %v; run 'repair' to clean up", e.Name, e.Path, e.Err)
}

func (e *RepairNeededError) Unwrap() error {
	return e.Err
}
