// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package status

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const progressThrottle = 100 * time.Millisecond

// Progress is a byte counting progress sink. The zero value and a nil
// *Progress are valid no-op sinks.
type Progress struct {
	bar     *progressbar.ProgressBar
	written int64
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminalFile(f)
	}
	return false
}

// isTerminalFile checks if a file is a terminal
func isTerminalFile(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Enabled reports whether a bar should be drawn for total bytes on writer.
// An unknown total (<= 0) always disables the bar.
func Enabled(writer io.Writer, total int64, wanted bool) bool {
	return wanted && total > 0 && isTerminal(writer)
}

// NewProgress creates a sink that draws a bar for task on writer when
// enabled, and only counts bytes otherwise.
func NewProgress(writer io.Writer, task string, total int64, enabled bool) *Progress {
	p := &Progress{}
	if !enabled || total <= 0 {
		return p
	}
	p.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(progressThrottle),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", task)),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(writer) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return p
}

// Write counts p and advances the bar. It never fails so it can sit in an
// io.MultiWriter or TeeReader without affecting the data path.
func (p *Progress) Write(b []byte) (int, error) {
	if p == nil {
		return len(b), nil
	}
	p.written += int64(len(b))
	if p.bar != nil {
		_ = p.bar.Add64(int64(len(b)))
	}
	return len(b), nil
}

// Written returns the number of bytes seen so far.
func (p *Progress) Written() int64 {
	if p == nil {
		return 0
	}
	return p.written
}

// Finish completes the bar. Estimates are advisory, so the bar is closed
// even when fewer or more bytes than expected went through.
func (p *Progress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	if p.bar.GetMax64() < p.written {
		p.bar.ChangeMax64(p.written)
	}
	_ = p.bar.Finish()
}
