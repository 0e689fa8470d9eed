// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/spf13/cobra"
)

// restorepoint list
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List restore points, newest first",
		Args:         cobra.NoArgs,
		RunE:         listRestorePoints,
		SilenceUsage: true,
	}
}

func listRestorePoints(_ *cobra.Command, _ []string) error {
	m := app.Manager()
	recs := m.List()
	if len(recs) == 0 {
		app.UX.PrintToUser("No restore points found")
	} else if err := printTable(recs); err != nil {
		return err
	}
	if orphans := m.Orphans(); len(orphans) > 0 {
		app.UX.Warn("%d orphaned item(s) in %s; run '%s repair' to clean up",
			len(orphans), app.GetBaseDir(), constants.AppName)
	}
	return nil
}
