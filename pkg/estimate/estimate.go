// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package estimate computes the advisory on-disk size of a snapshot's
// source paths. The figure only drives progress reporting; it never
// decides whether an operation proceeds.
package estimate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/utils"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelWalks bounds concurrent root walks.
const maxParallelWalks = 4

// Estimator sums file sizes below a set of roots.
type Estimator struct {
	fs  afero.Fs
	log luxlog.Logger
}

// New returns an Estimator walking fs.
func New(fs afero.Fs, log luxlog.Logger) *Estimator {
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	return &Estimator{fs: fs, log: log}
}

// Estimate returns the total size in bytes of the regular files below
// paths, skipping anything matched by exclude. Unreadable entries below a
// root are skipped; an unreadable root fails the whole estimate.
func (e *Estimator) Estimate(paths, exclude []string) (int64, error) {
	sizes := make([]int64, len(paths))
	var g errgroup.Group
	g.SetLimit(maxParallelWalks)
	for i, root := range paths {
		g.Go(func() error {
			size, err := e.dirSize(root, exclude)
			if err != nil {
				return fmt.Errorf("estimating %s: %w", root, err)
			}
			sizes[i] = size
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	var total int64
	for _, size := range sizes {
		total += size
	}
	return total, nil
}

func (e *Estimator) dirSize(root string, exclude []string) (int64, error) {
	var size int64
	root = filepath.Clean(root)
	err := afero.Walk(e.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			e.log.Debug("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if Excluded(path, exclude) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// Excluded reports whether path matches one of the tar style exclusion
// patterns. Absolute patterns exclude the named tree; relative patterns are
// matched against the base name.
func Excluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.HasPrefix(pattern, "/") {
			if matchAbsolute(pattern, path) {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

func matchAbsolute(pattern, path string) bool {
	if !strings.ContainsAny(pattern, "*?[") {
		return utils.IsSubPath(pattern, path)
	}
	// a glob matches the path itself or any of its ancestors
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		if ok, _ := filepath.Match(pattern, p); ok {
			return true
		}
		if p == "/" || p == "." {
			return false
		}
	}
}
