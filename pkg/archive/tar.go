// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	luxlog "github.com/luxfi/log"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/luxfi/restorepoint/pkg/dependencies"
	"github.com/luxfi/restorepoint/pkg/snapshot"
	"github.com/luxfi/restorepoint/pkg/utils"
	"go.uber.org/zap"
)

var _ snapshot.Archiver = (*Tar)(nil)

// Tar is the Archiver backed by a tar binary.
type Tar struct {
	Path  string
	Level int
	Log   luxlog.Logger
}

// New returns a Tar using tarPath (looked up in PATH when relative) and
// gzip level.
func New(tarPath string, level int, log luxlog.Logger) *Tar {
	if tarPath == "" {
		tarPath = constants.DefaultTarPath
	}
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = constants.DefaultCompressionLevel
	}
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	return &Tar{Path: tarPath, Level: level, Log: log}
}

// Available checks that the tar binary exists and is a supported GNU tar.
func (t *Tar) Available(ctx context.Context) error {
	path, err := exec.LookPath(t.Path)
	if err != nil {
		return fmt.Errorf("tar not found (%s): %w", t.Path, err)
	}
	version, err := dependencies.CheckTar(ctx, path)
	if err != nil {
		return err
	}
	t.Log.Debug("using tar", zap.String("path", path), zap.String("version", version))
	return nil
}

// memberName converts an absolute path to its name inside the archive.
func memberName(p string) string {
	rel := strings.TrimPrefix(filepath.Clean(p), "/")
	if rel == "" {
		return "."
	}
	return rel
}

// CreateArgs builds the tar arguments for an archive of paths under root.
// Absolute excludes are anchored at the archive root, relative ones are
// globs matched anywhere. Exclusions must precede the member list.
func CreateArgs(root string, paths, exclude []string) []string {
	args := []string{"--create", "--directory", root, "--file", "-"}
	for _, ex := range exclude {
		if filepath.IsAbs(ex) {
			name := memberName(ex)
			if name == "." {
				continue
			}
			args = append(args, "--anchored", "--exclude="+name)
			continue
		}
		args = append(args, "--no-anchored", "--exclude="+ex)
	}
	for _, p := range paths {
		args = append(args, memberName(p))
	}
	return args
}

// ExtractArgs builds the tar arguments that expand an archive over root.
func ExtractArgs(root string) []string {
	return []string{"--extract", "--overwrite", "--preserve-permissions", "--file", "-", "--directory", root}
}

func rootOrSlash(root string) string {
	if root == "" {
		return "/"
	}
	return root
}

// diagnostics tees tar's stderr into the error output and the log file.
func diagnostics(buf *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}

// Archive streams tar's output through gzip into req.Destination and
// returns the number of compressed bytes written.
func (t *Tar) Archive(ctx context.Context, req snapshot.ArchiveRequest) (int64, error) {
	if len(req.Paths) == 0 {
		return 0, fmt.Errorf("nothing to archive")
	}
	dest := &countingWriter{w: req.Destination}
	gz, err := gzip.NewWriterLevel(dest, t.Level)
	if err != nil {
		return 0, err
	}
	var stdout io.Writer = gz
	if req.Progress != nil {
		stdout = io.MultiWriter(gz, req.Progress)
	}

	args := CreateArgs(rootOrSlash(req.Root), req.Paths, req.Exclude)
	t.Log.Info("running tar", zap.String("path", t.Path), zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = diagnostics(&stderr, req.Diagnostics)

	runErr := cmd.Run()
	closeErr := gz.Close()
	if runErr != nil {
		output := utils.RemoveLineCleanChars(stderr.String())
		t.Log.Error("tar create failed", zap.Error(runErr), zap.String("stderr", output))
		return dest.n, &snapshot.ArchiveError{Op: snapshot.OpArchive, Output: output, Err: runErr}
	}
	if closeErr != nil {
		return dest.n, fmt.Errorf("compressing archive: %w", closeErr)
	}
	return dest.n, nil
}

// Extract decompresses req.Source and expands it over req.Root, replacing
// existing files.
func (t *Tar) Extract(ctx context.Context, req snapshot.ExtractRequest) error {
	src := req.Source
	if req.Progress != nil {
		src = io.TeeReader(src, req.Progress)
	}
	zr, err := gzip.NewReader(src)
	if err != nil {
		return &snapshot.ArchiveError{Op: snapshot.OpExtract, Err: fmt.Errorf("reading archive: %w", err)}
	}
	defer zr.Close()

	args := ExtractArgs(rootOrSlash(req.Root))
	t.Log.Info("running tar", zap.String("path", t.Path), zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Stdin = zr
	cmd.Stderr = diagnostics(&stderr, req.Diagnostics)
	if err := cmd.Run(); err != nil {
		output := utils.RemoveLineCleanChars(stderr.String())
		t.Log.Error("tar extract failed", zap.Error(err), zap.String("stderr", output))
		return &snapshot.ArchiveError{Op: snapshot.OpExtract, Output: output, Err: err}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
