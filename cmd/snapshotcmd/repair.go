// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"

	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/spf13/cobra"
)

var repairForce bool

// restorepoint repair
func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Remove data left behind by interrupted operations",
		Long: `Find and remove data in the restore point store that is not a valid
restore point: staging directories of interrupted creates, and directories
whose record or archive is missing or unreadable. These never show up in
'list'.`,
		Args:         cobra.NoArgs,
		RunE:         repairStore,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&repairForce, "force", false, "skip the confirmation prompt")
	return cmd
}

func repairStore(cmd *cobra.Command, _ []string) error {
	removed, err := app.Manager().Repair(cmd.Context(), repairForce)
	if errors.Is(err, snapshot.ErrCancelled) {
		app.UX.PrintToUser("Repair cancelled")
		return nil
	}
	if len(removed) > 0 {
		app.UX.GreenCheckmarkToUser("Removed %d orphaned item(s)", len(removed))
	} else if err == nil {
		app.UX.PrintToUser("Nothing to repair")
	}
	return err
}
