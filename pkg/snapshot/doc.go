// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapshot names, records, enumerates and reverses point-in-time
// archives of selected filesystem paths.
//
// The Catalog keeps one directory per snapshot under the base directory:
//
//	<base>/<name>/backup.tar.gz   archive produced by the archiver
//	<base>/<name>/metadata.json   the Snapshot record
//	<base>/<name>/backup.log      archiver diagnostics
//
// A snapshot is built in a hidden staging directory and only renamed into
// place once its archive and record are complete, so an interrupted create
// never shows up in a listing. The SnapshotManager composes the catalog with
// the archiver, device enumerator, size estimator and operator prompts.
//
// Usage:
//
//	sm := snapshot.NewSnapshotManager(deps, cfg)
//	snap, err := sm.Create(ctx, snapshot.CreateOptions{Kind: snapshot.KindSystem})
//	if err != nil {
//	    // handle error
//	}
package snapshot
