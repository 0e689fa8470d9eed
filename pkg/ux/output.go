// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ux

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	luxlog "github.com/luxfi/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// UserLog prints to the operator and mirrors what it prints into the
// invocation log. One instance is created per invocation.
type UserLog struct {
	log    luxlog.Logger
	writer io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

func NewUserLog(log luxlog.Logger, userwriter io.Writer, noColor bool) *UserLog {
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	ul := &UserLog{
		log:    log,
		writer: userwriter,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
	if noColor {
		ul.green.DisableColor()
		ul.yellow.DisableColor()
		ul.red.DisableColor()
	}
	return ul
}

// Writer returns the destination of user output.
func (ul *UserLog) Writer() io.Writer {
	return ul.writer
}

// PrintToUser prints msg directly to the user (command output)
// Does NOT log to avoid duplication
func (ul *UserLog) PrintToUser(msg string, args ...interface{}) {
	_, _ = fmt.Fprintln(ul.writer, fmt.Sprintf(msg, args...))
}

// Info logs an info message
func (ul *UserLog) Info(msg string, args ...interface{}) {
	ul.log.Info(fmt.Sprintf(msg, args...))
}

// PrintLineSeparator prints a line separator
func (ul *UserLog) PrintLineSeparator(msg ...string) {
	separator := "=========================================="
	if len(msg) > 0 && msg[0] != "" {
		separator = msg[0]
	}
	_, _ = fmt.Fprintln(ul.writer, separator)
}

// Error logs an error message
func (ul *UserLog) Error(msg string, args ...interface{}) {
	ul.log.Error(fmt.Sprintf(msg, args...))
}

// Warn prints a yellow warning and records it in the log
func (ul *UserLog) Warn(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf(msg, args...)
	_, _ = fmt.Fprintln(ul.writer, ul.yellow.Sprint("Warning: "+formattedMsg))
	ul.log.Warn(formattedMsg)
}

// Caution prints a yellow banner line without the "Warning:" prefix
func (ul *UserLog) Caution(msg string, args ...interface{}) {
	_, _ = fmt.Fprintln(ul.writer, ul.yellow.Sprintf(msg, args...))
}

// RedXToUser prints a red X error message to the user
func (ul *UserLog) RedXToUser(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf("✗ %s", fmt.Sprintf(msg, args...))
	_, _ = fmt.Fprintln(ul.writer, ul.red.Sprint(formattedMsg))
	ul.log.Error(formattedMsg)
}

// GreenCheckmarkToUser prints a green checkmark success message to the user
func (ul *UserLog) GreenCheckmarkToUser(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf("✓ %s", fmt.Sprintf(msg, args...))
	_, _ = fmt.Fprintln(ul.writer, ul.green.Sprint(formattedMsg))
	ul.log.Info(formattedMsg)
}

// StepTracker tracks progress of multi-step operations with elapsed time
type StepTracker struct {
	stepStart time.Time
	stepName  string
	ul        *UserLog
}

// NewStepTracker creates a tracker bound to ul
func NewStepTracker(ul *UserLog) *StepTracker {
	return &StepTracker{ul: ul}
}

// Start begins tracking a new step
func (st *StepTracker) Start(stepName string) {
	st.stepStart = time.Now()
	st.stepName = stepName
	st.ul.PrintToUser("%s...", stepName)
	st.ul.Info("step started: %s", stepName)
}

// Elapsed returns the elapsed time for the current step
func (st *StepTracker) Elapsed() time.Duration {
	return time.Since(st.stepStart)
}

// Complete marks the step as done with success
func (st *StepTracker) Complete(suffix string) {
	elapsed := st.Elapsed()
	if suffix != "" {
		st.ul.GreenCheckmarkToUser("%s (%.1fs) - %s", st.stepName, elapsed.Seconds(), suffix)
	} else {
		st.ul.GreenCheckmarkToUser("%s (%.1fs)", st.stepName, elapsed.Seconds())
	}
}

// Failed marks the step as failed with an error
func (st *StepTracker) Failed(reason string) {
	elapsed := st.Elapsed()
	st.ul.RedXToUser("%s (%.1fs) - FAILED: %s", st.stepName, elapsed.Seconds(), reason)
}

// FormatCount renders n with thousands separators, e.g. 1,048,576.
func FormatCount(n uint64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", n)
}
