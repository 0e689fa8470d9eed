// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package configcmd

import (
	"fmt"
	"io"

	"github.com/luxfi/restorepoint/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging defaults, the config file and
RESTOREPOINT_* environment variables, as YAML.`,
		Args:         cobra.NoArgs,
		RunE:         runShow,
		SilenceUsage: true,
	}
}

func runShow(_ *cobra.Command, _ []string) error {
	return writeConfig(app.UX.Writer(), app.Conf)
}

func writeConfig(w io.Writer, conf *config.Config) error {
	out, err := yaml.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if conf.File != "" {
		_, _ = fmt.Fprintf(w, "# source: %s\n", conf.File)
	} else {
		_, _ = fmt.Fprintln(w, "# source: built-in defaults")
	}
	_, err = w.Write(out)
	return err
}
