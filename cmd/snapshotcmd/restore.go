// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"

	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/spf13/cobra"
)

var restoreForce bool

// restorepoint restore
func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore the filesystem from a restore point",
		Long: `Extract a restore point over the live filesystem, overwriting files in place.

You are asked to type YES before anything is changed unless --force is given.
Files created after the restore point was taken are left alone. Restoring is
not transactional: if extraction fails part way, some files will already have
been replaced. The archiver's diagnostics are kept in restore.log next to the
archive.`,
		Args:         cobra.ExactArgs(1),
		RunE:         restoreRestorePoint,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&restoreForce, "force", false, "skip the confirmation prompt")
	return cmd
}

func restoreRestorePoint(cmd *cobra.Command, args []string) error {
	if err := app.Archiver().Available(cmd.Context()); err != nil {
		return err
	}
	name := args[0]
	err := app.Manager().Restore(cmd.Context(), name, restoreForce)
	switch {
	case errors.Is(err, snapshot.ErrCancelled):
		app.UX.PrintToUser("Restoration cancelled")
		return nil
	case err != nil:
		explainNotFound(err)
		return err
	}
	app.UX.GreenCheckmarkToUser("System restoration completed successfully!")
	app.UX.PrintToUser("Log file: %s", app.GetLogPath())
	return nil
}
