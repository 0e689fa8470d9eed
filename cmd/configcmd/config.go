// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"fmt"

	"github.com/luxfi/restorepoint/pkg/application"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/spf13/cobra"
)

var app *application.RestorePoint

func NewCmd(injectedApp *application.RestorePoint) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect restorepoint configuration",
		Long:  `Inspect the effective restorepoint configuration`,
		Annotations: map[string]string{
			constants.SkipPrivilegeAnnotation: "true",
		},
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			if err != nil {
				fmt.Println(err)
			}
		},
	}
	app = injectedApp
	cmd.AddCommand(newShowCmd())

	return cmd
}
