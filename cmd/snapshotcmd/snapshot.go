// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/luxfi/restorepoint/pkg/application"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/spf13/cobra"
)

var app *application.RestorePoint

// NewCmds creates the restore point lifecycle commands. They are added to
// the root command directly: restorepoint create, restorepoint list, ...
func NewCmds(injectedApp *application.RestorePoint) []*cobra.Command {
	app = injectedApp
	return []*cobra.Command{
		newCreateCmd(),
		newListCmd(),
		newRestoreCmd(),
		newDeleteCmd(),
		newRepairCmd(),
		newPruneCmd(),
	}
}

var tableHeaders = []string{"Name", "Type", "Created", "Size"}

// tableRows formats records for the restore point table.
func tableRows(recs []snapshot.Snapshot) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, s := range recs {
		rows = append(rows, []string{
			s.Name,
			string(s.Kind),
			s.CreatedAt.Local().Format(constants.DisplayLayout),
			humanize.IBytes(uint64(s.SizeBytes)),
		})
	}
	return rows
}

func printTable(recs []snapshot.Snapshot) error {
	return ux.PrintTable(app.UX.Writer(), tableHeaders, tableRows(recs))
}

// explainNotFound prints the current catalog as a hint when err names an
// unknown restore point.
func explainNotFound(err error) {
	var nf *snapshot.NotFoundError
	if !errors.As(err, &nf) {
		return
	}
	if len(nf.Available) == 0 {
		app.UX.PrintToUser("No restore points exist yet. Create one with '%s create'.", constants.AppName)
		return
	}
	app.UX.PrintToUser("Available restore points:")
	if perr := printTable(nf.Available); perr != nil {
		app.UX.Error("failed printing table: %v", perr)
	}
}
