// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/luxfi/restorepoint/cmd/configcmd"
	"github.com/luxfi/restorepoint/cmd/snapshotcmd"
	"github.com/luxfi/restorepoint/pkg/application"
	"github.com/luxfi/restorepoint/pkg/config"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/logging"
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/luxfi/restorepoint/pkg/utils"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	app *application.RestorePoint

	Version        = "1.0.0"
	logLevel       string
	cfgFile        string
	nonInteractive bool
	verboseFlag    bool
	debugFlag      bool
	noColor        bool
	noProgress     bool
)

// checkRoot is a variable for testing purposes
var checkRoot = utils.CheckRoot

func NewRootCmd() *cobra.Command {
	// rootCmd represents the base command when called without any subcommands
	rootCmd := &cobra.Command{
		Use: constants.AppName,
		Long: `restorepoint - point-in-time restore points for Linux hosts.

A restore point is a compressed archive of selected paths plus a small
record describing it. Restore points are kept under a root-only directory,
one directory per restore point.

COMMAND OVERVIEW:

  create    Create a restore point (--type system|full, --include-usb)
  list      List restore points, newest first
  restore   Extract a restore point over the live filesystem
  delete    Delete a restore point
  repair    Remove data left behind by interrupted operations
  prune     Delete the oldest restore points beyond --keep
  config    Show the effective configuration

TYPES:

  system    /etc
  full      /etc and /home

Restoring overwrites files in place and is not transactional. Run it from a
live or rescue environment where possible.`,
		PersistentPreRunE:  createApp,
		PersistentPostRunE: closeApp,
		Version:            Version,
		SilenceErrors:      true,
	}

	// Disable printing the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is %s)", filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFileName+"."+constants.DefaultConfigFileType)))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level for the invocation log file")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false,
		"Disable prompts; destructive commands then require --force (also enabled when stdin is not a TTY or CI=1)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Show verbose output (info level logs)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output (debug level logs)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable progress bars")

	// add restore point lifecycle commands
	for _, cmd := range snapshotcmd.NewCmds(app) {
		rootCmd.AddCommand(cmd)
	}

	// add config command
	rootCmd.AddCommand(configcmd.NewCmd(app))

	return rootCmd
}

// skipsPrivilege reports commands that neither need root nor a log file.
func skipsPrivilege(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[constants.SkipPrivilegeAnnotation] == "true" {
			return true
		}
	}
	return cmd.Name() == "help"
}

func createApp(cmd *cobra.Command, _ []string) error {
	readOnly := skipsPrivilege(cmd)
	if !readOnly {
		// checked before any other work, configuration included
		if err := checkRoot(); err != nil {
			return err
		}
	}

	v := viper.New()
	conf, err := config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("failed loading configuration: %w", err)
	}
	if noProgress {
		conf.Progress = false
	}

	log := logging.Nop()
	if !readOnly {
		if err := setupEnv(conf.BaseDir); err != nil {
			return err
		}
		log, err = setupLogging(conf.BaseDir, cmd.Name())
		if err != nil {
			return err
		}
	}

	// If --non-interactive flag is set, propagate to env so IsInteractive() sees it
	if nonInteractive {
		_ = os.Setenv(prompts.EnvNonInteractive, "1")
	}
	prompter := prompts.NewPrompterForMode(nonInteractive)

	ul := ux.NewUserLog(log.Logger, os.Stdout, noColor)
	app.Setup(conf.BaseDir, log, ul, conf, prompter)

	log.Info("starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("version", Version),
		zap.String("invocation", log.Invocation),
		zap.String("config-file", conf.File),
		zap.Bool("non-interactive", prompts.IsNonInteractive(nonInteractive)),
		zap.Strings("flags", changedFlags(cmd.Flags())),
	)
	return nil
}

// changedFlags lists the flags set on the command line as name=value.
func changedFlags(flags *pflag.FlagSet) []string {
	var set []string
	flags.Visit(func(f *pflag.Flag) {
		set = append(set, f.Name+"="+f.Value.String())
	})
	return set
}

func closeApp(_ *cobra.Command, _ []string) error {
	return app.Close()
}

// setupEnv creates the access-restricted store and its log directory.
func setupEnv(baseDir string) error {
	if err := os.MkdirAll(baseDir, constants.ReadWriteExecuteUserOnly); err != nil {
		return fmt.Errorf("failed creating the base dir %s: %w", baseDir, err)
	}
	// MkdirAll leaves an existing directory's mode alone
	if err := os.Chmod(baseDir, constants.ReadWriteExecuteUserOnly); err != nil {
		return fmt.Errorf("failed restricting the base dir %s: %w", baseDir, err)
	}
	logsDir := filepath.Join(baseDir, constants.LogDir)
	if err := os.MkdirAll(logsDir, constants.ReadWriteExecuteUserOnly); err != nil {
		return fmt.Errorf("failed creating the log dir %s: %w", logsDir, err)
	}
	return nil
}

func setupLogging(baseDir, action string) (*logging.Logger, error) {
	cfg := logging.Config{
		Dir:      filepath.Join(baseDir, constants.LogDir),
		Action:   action,
		LogLevel: logLevel,
	}
	switch {
	case debugFlag:
		cfg.LogLevel = "DEBUG"
		cfg.DisplayLevel = "DEBUG"
	case verboseFlag:
		cfg.DisplayLevel = "INFO"
	}
	return logging.New(cfg)
}

// exitCode reports the outcome of a command and returns the process exit
// status. A declined confirmation is a decision, not a failure.
func exitCode(err error, stdout, stderr io.Writer, logPath string) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, snapshot.ErrCancelled):
		_, _ = fmt.Fprintln(stdout, "cancelled")
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "\nERROR: %s\n", err)
	if logPath != "" {
		_, _ = fmt.Fprintf(stderr, "See the log file for details: %s\n", logPath)
	}
	return 1
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	app = application.New()
	rootCmd := NewRootCmd()

	// an interrupt cancels the running archiver; create then discards its staging data
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil && app.Log != nil {
		app.Log.Error("command failed", zap.Error(err))
		_ = app.Close()
	}
	os.Exit(exitCode(err, os.Stdout, os.Stderr, app.GetLogPath()))
}
