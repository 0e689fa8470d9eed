// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"

	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/spf13/cobra"
)

var (
	pruneKeep  int
	pruneForce bool
)

// restorepoint prune
func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete the oldest restore points",
		Long: `Delete the oldest restore points so that at most --keep remain. Without
--keep the configured 'keep' value is used. One confirmation covers the
whole batch.`,
		Args:         cobra.NoArgs,
		RunE:         pruneRestorePoints,
		SilenceUsage: true,
	}
	cmd.Flags().IntVar(&pruneKeep, "keep", 0, "number of restore points to keep (default from config)")
	cmd.Flags().BoolVar(&pruneForce, "force", false, "skip the confirmation prompt")
	return cmd
}

func pruneRestorePoints(cmd *cobra.Command, _ []string) error {
	keep := app.Conf.Keep
	if cmd.Flags().Changed("keep") {
		keep = pruneKeep
	}
	deleted, err := app.Manager().Prune(cmd.Context(), keep, pruneForce)
	if errors.Is(err, snapshot.ErrCancelled) {
		app.UX.PrintToUser("Prune cancelled")
		return nil
	}
	if len(deleted) > 0 {
		app.UX.GreenCheckmarkToUser("Deleted %d restore point(s), %d kept", len(deleted), keep)
	} else if err == nil {
		app.UX.PrintToUser("Nothing to prune: %d restore point(s) or fewer exist", keep)
	}
	return err
}
