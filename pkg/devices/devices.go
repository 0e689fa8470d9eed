// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package devices discovers mounted removable (USB attached) volumes.
package devices

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/utils"
	"github.com/shirou/gopsutil/disk"
	"go.uber.org/zap"
)

const (
	DefaultByIDDir = "/dev/disk/by-id"
	usbPrefix      = "usb-"
)

// Enumerator lists removable volumes by joining the kernel's persistent
// device links with the mount table.
type Enumerator struct {
	ByIDDir    string
	Partitions func(all bool) ([]disk.PartitionStat, error)
	Log        luxlog.Logger
}

// New returns an Enumerator reading the live system.
func New(log luxlog.Logger) *Enumerator {
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	return &Enumerator{
		ByIDDir:    DefaultByIDDir,
		Partitions: disk.Partitions,
		Log:        log,
	}
}

// ListRemovableVolumes returns the sorted mount points of USB attached
// devices. Failures degrade to an empty result and a warning in the log.
func (e *Enumerator) ListRemovableVolumes() []string {
	usbDevices, err := e.usbDeviceNames()
	if err != nil {
		e.Log.Warn("could not detect USB drives", zap.Error(err))
		return nil
	}
	if len(usbDevices) == 0 {
		return nil
	}

	parts, err := e.Partitions(false)
	if err != nil {
		e.Log.Warn("could not read mount table", zap.Error(err))
		return nil
	}

	var mounts []string
	seen := map[string]struct{}{}
	for _, p := range parts {
		name := filepath.Base(p.Device)
		if _, ok := usbDevices[name]; !ok {
			continue
		}
		mount := filepath.Clean(p.Mountpoint)
		if IsCoreSystemPath(mount) {
			e.Log.Info("ignoring removable device mounted on a system directory",
				zap.String("device", p.Device), zap.String("mount", mount))
			continue
		}
		if _, ok := seen[mount]; ok {
			continue
		}
		seen[mount] = struct{}{}
		mounts = append(mounts, mount)
	}
	sort.Strings(mounts)
	return mounts
}

// usbDeviceNames resolves every usb-* link to its kernel device name (sdb, sdb1).
func (e *Enumerator) usbDeviceNames() (map[string]struct{}, error) {
	entries, err := os.ReadDir(e.ByIDDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := map[string]struct{}{}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), usbPrefix) {
			continue
		}
		target, err := filepath.EvalSymlinks(filepath.Join(e.ByIDDir, entry.Name()))
		if err != nil {
			e.Log.Debug("skipping dangling device link", zap.String("link", entry.Name()), zap.Error(err))
			continue
		}
		names[filepath.Base(target)] = struct{}{}
	}
	return names, nil
}

// IsCoreSystemPath reports whether mount is the root, or overlaps a core
// system directory.
func IsCoreSystemPath(mount string) bool {
	mount = filepath.Clean(mount)
	if mount == "/" {
		return true
	}
	for _, dir := range constants.CoreSystemDirs {
		if dir == "/" {
			continue
		}
		if utils.Overlaps(dir, mount) {
			return true
		}
	}
	return false
}

// FreeSpace returns the bytes available to root on the filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
