// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"regexp"
	"strings"
)

var (
	ansiRegex    = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	controlRegex = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F]`)
)

// RemoveLineCleanChars removes ANSI escape codes and other terminal control characters from a string
// so tar diagnostics read cleanly in errors and logs.
func RemoveLineCleanChars(s string) string {
	s = ansiRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r", "")
	return controlRegex.ReplaceAllString(s, "")
}

// SplitSelection splits a comma separated answer into trimmed, non-empty tokens.
func SplitSelection(s string) []string {
	var tokens []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
