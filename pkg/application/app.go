// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"path/filepath"

	"github.com/luxfi/restorepoint/pkg/archive"
	"github.com/luxfi/restorepoint/pkg/config"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/devices"
	"github.com/luxfi/restorepoint/pkg/estimate"
	"github.com/luxfi/restorepoint/pkg/logging"
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/luxfi/restorepoint/pkg/ux"
	"github.com/spf13/afero"
)

// RestorePoint is the invocation-scoped application handle. Nothing on it
// outlives the command that set it up.
type RestorePoint struct {
	Log     *logging.Logger
	UX      *ux.UserLog
	Conf    *config.Config
	Prompt  prompts.Prompter
	Fs      afero.Fs
	baseDir string
}

func New() *RestorePoint {
	return &RestorePoint{}
}

func (app *RestorePoint) Setup(baseDir string, log *logging.Logger, ul *ux.UserLog, conf *config.Config, prompt prompts.Prompter) {
	app.baseDir = baseDir
	app.Log = log
	app.UX = ul
	app.Conf = conf
	app.Prompt = prompt
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
}

func (app *RestorePoint) GetBaseDir() string {
	return app.baseDir
}

func (app *RestorePoint) GetLogsDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

// GetLogPath returns this invocation's log file, empty before Setup.
func (app *RestorePoint) GetLogPath() string {
	if app.Log == nil {
		return ""
	}
	return app.Log.Path
}

func (app *RestorePoint) Catalog() *snapshot.Catalog {
	return snapshot.NewCatalog(app.Fs, app.baseDir, app.Log.Logger)
}

func (app *RestorePoint) Archiver() *archive.Tar {
	return archive.New(app.Conf.TarPath, app.Conf.CompressionLevel, app.Log.Logger)
}

// Manager wires the lifecycle manager with the real collaborators.
func (app *RestorePoint) Manager() *snapshot.SnapshotManager {
	return snapshot.NewSnapshotManager(snapshot.Deps{
		Catalog:   app.Catalog(),
		Archiver:  app.Archiver(),
		Devices:   devices.New(app.Log.Logger),
		Estimator: estimate.New(app.Fs, app.Log.Logger),
		Prompt:    app.Prompt,
		UX:        app.UX,
		Log:       app.Log.Logger,
		FreeSpace: devices.FreeSpace,
	}, snapshot.Options{
		SystemPaths: app.Conf.SystemPaths,
		FullPaths:   app.Conf.FullPaths,
		Exclude:     app.Conf.Exclude,
		Progress:    app.Conf.Progress,
	})
}

// Close flushes the invocation log.
func (app *RestorePoint) Close() error {
	if app.Log == nil {
		return nil
	}
	return app.Log.Close()
}
