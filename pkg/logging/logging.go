// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logging builds the per-invocation file logger.
//
// Every invocation of the tool gets its own log file named after the action
// being performed, e.g. logs/restorepoint_create_20240101_120000.log. The
// logger is returned to the caller and threaded explicitly through the
// application; there is no package-level logger or factory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/constants"
)

const (
	DefaultLogLevel     = "INFO"
	DefaultDisplayLevel = "ERROR"
)

// Config configures a per-invocation logger.
type Config struct {
	Dir    string
	Action string
	// LogLevel is the file level, DisplayLevel the level echoed to the
	// terminal. Both take luxlog level names (DEBUG, INFO, WARN, ...).
	LogLevel     string
	DisplayLevel string
	Now          func() time.Time
}

// Logger bundles the invocation logger with the file it writes to.
type Logger struct {
	luxlog.Logger
	Path       string
	Invocation string
	factory    luxlog.Factory
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.factory != nil {
		l.factory.Close()
		l.factory = nil
	}
	return nil
}

// Name returns the logger name for action at t; the file is Name + ".log".
func Name(action string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s", constants.AppName, action, t.Format(constants.TimestampLayout))
}

// FileName returns the log file name for action at t.
func FileName(action string, t time.Time) string {
	return Name(action, t) + ".log"
}

func parseLevel(name, fallback string) (luxlog.Level, error) {
	if name == "" {
		name = fallback
	}
	return luxlog.ToLevel(strings.ToUpper(name))
}

// New creates the log directory if needed and opens a fresh log file.
func New(cfg Config) (*Logger, error) {
	logLevel, err := parseLevel(cfg.LogLevel, DefaultLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	displayLevel, err := parseLevel(cfg.DisplayLevel, DefaultDisplayLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid display level %q: %w", cfg.DisplayLevel, err)
	}
	if err := os.MkdirAll(cfg.Dir, constants.ReadWriteExecuteUserOnly); err != nil {
		return nil, fmt.Errorf("failed creating log directory: %w", err)
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	name := Name(cfg.Action, now())

	config := luxlog.Config{}
	config.LogLevel = logLevel
	config.DisplayLevel = displayLevel
	config.Directory = cfg.Dir
	config.LogFormat = luxlog.Colors
	config.MaxSize = constants.MaxLogFileSizeMB
	config.MaxFiles = constants.MaxNumOfLogFiles
	config.MaxAge = constants.RetainOldFiles

	// skip ux frames so mirrored entries report the calling command
	luxlog.RegisterInternalPackages("github.com/luxfi/restorepoint/pkg/ux")

	factory := luxlog.NewFactoryWithConfig(config)
	log, err := factory.Make(name)
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	return &Logger{
		Logger:     log,
		Path:       filepath.Join(cfg.Dir, name+".log"),
		Invocation: uuid.NewString(),
		factory:    factory,
	}, nil
}

// Nop returns a logger that discards everything, for tests and read-only paths.
func Nop() *Logger {
	return &Logger{Logger: luxlog.NewNoOpLogger()}
}
