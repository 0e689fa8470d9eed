// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import (
	"time"
)

const (
	ReadWriteExecuteUserOnly = 0o700
	WriteReadUserOnlyPerms   = 0o600

	AppName = "restorepoint"

	DefaultBaseDir  = "/var/backups/linux_restore_points"
	LogDir          = "logs"
	LockFileName    = ".lock"
	StagingPrefix   = "."
	StagingSuffix   = ".partial"
	ArchiveFileName = "backup.tar.gz"
	MetadataFile    = "metadata.json"
	BackupLogFile   = "backup.log"
	RestoreLogFile  = "restore.log"

	DefaultConfigDir      = "/etc/restorepoint"
	DefaultConfigFileName = "config"
	DefaultConfigFileType = "yaml"
	EnvPrefix             = "RESTOREPOINT"

	// ConfirmPhrase must be typed verbatim to approve a destructive action.
	ConfirmPhrase = "YES"

	// SelectAll selects every discovered removable volume.
	SelectAll = "all"

	TimestampLayout = "20060102_150405"
	DisplayLayout   = "2006-01-02 15:04"

	DefaultTarPath          = "tar"
	DefaultCompressionLevel = 6
	DefaultKeep             = 5

	MaxLogFileSizeMB = 16
	MaxNumOfLogFiles = 50
	RetainOldFiles   = 0 // retain all old log files

	// SkipPrivilegeAnnotation marks commands that run without root and
	// without opening a log file.
	SkipPrivilegeAnnotation = "restorepoint/skip-privilege"

	LockRetryDelay = 250 * time.Millisecond
	LockTimeout    = 10 * time.Second
)

// Config keys.
const (
	ConfigBaseDir          = "base-dir"
	ConfigSystemPaths      = "system-paths"
	ConfigFullPaths        = "full-paths"
	ConfigExclude          = "exclude"
	ConfigCompressionLevel = "compression-level"
	ConfigTarPath          = "tar-path"
	ConfigProgress         = "progress"
	ConfigKeep             = "keep"
)

var (
	DefaultSystemPaths = []string{"/etc"}
	DefaultFullPaths   = []string{"/etc", "/home"}

	// VirtualExcludes are never archived: kernel-exposed or non-persistent trees.
	VirtualExcludes = []string{
		"/proc", "/sys", "/dev", "/run", "/tmp", "/mnt", "/media", "/lost+found",
	}

	// CoreSystemDirs may never be nominated as removable volumes.
	CoreSystemDirs = []string{
		"/", "/boot", "/etc", "/home", "/usr", "/var", "/opt", "/root",
		"/bin", "/sbin", "/lib", "/lib64", "/srv", "/proc", "/sys", "/dev",
	}
)
