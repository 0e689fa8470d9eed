// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/spf13/cobra"
)

var (
	createType string
	includeUSB bool
)

// restorepoint create
func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a restore point",
		Long: `Create a restore point of the configured paths.

  system   /etc (default)
  full     /etc and /home

With --include-usb, mounted removable volumes are listed and can be added by
number (e.g. "1,3") or with "all". Virtual filesystems (/proc, /sys, /dev,
/run, /tmp, ...) and the restore point store itself are always excluded.

The restore point only becomes visible once the archive is complete; an
interrupted or failed create leaves nothing behind.`,
		Args:         cobra.NoArgs,
		RunE:         createRestorePoint,
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&createType, "type", string(snapshot.KindSystem), "restore point type: system or full")
	cmd.Flags().BoolVar(&includeUSB, "include-usb", false, "offer mounted removable volumes for inclusion")
	return cmd
}

func createRestorePoint(cmd *cobra.Command, _ []string) error {
	kind, err := snapshot.ParseKind(createType)
	if err != nil {
		return err
	}
	if err := app.Archiver().Available(cmd.Context()); err != nil {
		return err
	}

	tracker := ux.NewStepTracker(app.UX)
	tracker.Start(fmt.Sprintf("Creating %s restore point", kind))
	rec, err := app.Manager().Create(cmd.Context(), snapshot.CreateOptions{
		Kind:             kind,
		IncludeRemovable: includeUSB,
	})
	if err != nil {
		if errors.Is(err, snapshot.ErrCancelled) {
			app.UX.PrintToUser("Creation cancelled")
			return nil
		}
		tracker.Failed("no restore point was recorded")
		return err
	}
	tracker.Complete(rec.Name)

	app.UX.GreenCheckmarkToUser("Restore point created successfully!")
	app.UX.PrintToUser("Name: %s", rec.Name)
	app.UX.PrintToUser("Size: %s (%s bytes)", humanize.IBytes(uint64(rec.SizeBytes)), ux.FormatCount(uint64(rec.SizeBytes)))
	app.UX.PrintToUser("Log file: %s", app.GetLogPath())
	return nil
}
