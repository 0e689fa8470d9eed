// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"

	"github.com/manifoldco/promptui"
)

const (
	Yes = "Yes"
	No  = "No"
)

// promptUIRunner is a variable for testing purposes to allow mocking prompt.Run()
var promptUIRunner = func(prompt promptui.Prompt) (string, error) {
	return prompt.Run()
}

// promptUISelectRunner is a variable for testing purposes to allow mocking select.Run()
var promptUISelectRunner = func(sel promptui.Select) (int, string, error) {
	return sel.Run()
}

// Prompter is the operator interaction seam. Free-form answers (volume
// selections, confirmation phrases) go through CaptureStringAllowEmpty so
// callers can validate them themselves.
type Prompter interface {
	CaptureStringAllowEmpty(promptStr string) (string, error)
	CaptureYesNo(promptStr string) (bool, error)
}

type terminalPrompter struct{}

// NewPrompter returns a Prompter reading from the terminal
func NewPrompter() Prompter {
	return &terminalPrompter{}
}

// CaptureYesNo offers No first so that a stray Enter never approves removal.
func (*terminalPrompter) CaptureYesNo(promptStr string) (bool, error) {
	sel := promptui.Select{
		Label: promptStr,
		Items: []string{No, Yes},
	}
	_, decision, err := promptUISelectRunner(sel)
	if err != nil {
		return false, err
	}
	return decision == Yes, nil
}

// CaptureStringAllowEmpty returns the raw answer; ^C surfaces as promptui.ErrInterrupt.
func (*terminalPrompter) CaptureStringAllowEmpty(promptStr string) (string, error) {
	return promptUIRunner(promptui.Prompt{Label: promptStr})
}

// IsAbort reports whether err means the operator aborted the prompt (^C / ^D).
func IsAbort(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort)
}
