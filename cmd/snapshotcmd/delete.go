// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"

	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/spf13/cobra"
)

var deleteForce bool

// restorepoint delete
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "delete <name>",
		Short:        "Delete a restore point",
		Long:         `Delete a restore point's archive and record. Asks for YES unless --force is given.`,
		Args:         cobra.ExactArgs(1),
		RunE:         deleteRestorePoint,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&deleteForce, "force", false, "skip the confirmation prompt")
	return cmd
}

func deleteRestorePoint(cmd *cobra.Command, args []string) error {
	name := args[0]
	err := app.Manager().Delete(cmd.Context(), name, deleteForce)
	switch {
	case errors.Is(err, snapshot.ErrCancelled):
		app.UX.PrintToUser("Deletion cancelled")
		return nil
	case err != nil:
		explainNotFound(err)
		return err
	}
	app.UX.GreenCheckmarkToUser("Restore point '%s' deleted", name)
	return nil
}
