// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/require"
)

func withTTY(t *testing.T, tty bool) {
	orig := stdinIsTTY
	stdinIsTTY = func() bool { return tty }
	t.Cleanup(func() { stdinIsTTY = orig })
}

func TestIsNonInteractive_EnvVar(t *testing.T) {
	tests := []struct {
		envValue string
		expected bool
	}{
		{"1", true},
		{"true", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(EnvNonInteractive+"="+tc.envValue, func(t *testing.T) {
			withTTY(t, true)
			t.Setenv(EnvCI, "")
			t.Setenv(EnvNonInteractive, tc.envValue)
			require.Equal(t, tc.expected, IsNonInteractive(false))
		})
	}
}

func TestIsNonInteractive_CI(t *testing.T) {
	withTTY(t, true)
	t.Setenv(EnvNonInteractive, "")
	t.Setenv(EnvCI, "true")
	require.True(t, IsNonInteractive(false))
}

func TestIsNonInteractive_NoTTY(t *testing.T) {
	withTTY(t, false)
	t.Setenv(EnvNonInteractive, "")
	t.Setenv(EnvCI, "")
	require.True(t, IsNonInteractive(false))
}

func TestNewPrompterForMode(t *testing.T) {
	withTTY(t, true)
	t.Setenv(EnvNonInteractive, "")
	t.Setenv(EnvCI, "")

	_, ok := NewPrompterForMode(true).(*NonInteractivePrompter)
	require.True(t, ok, "expected NonInteractivePrompter when flag is set")

	_, ok = NewPrompterForMode(false).(*terminalPrompter)
	require.True(t, ok, "expected terminal prompter on a TTY")
}

func TestRealPrompterUsesRunners(t *testing.T) {
	require := require.New(t)
	origPrompt, origSelect := promptUIRunner, promptUISelectRunner
	defer func() { promptUIRunner, promptUISelectRunner = origPrompt, origSelect }()

	promptUIRunner = func(promptui.Prompt) (string, error) { return "YES", nil }
	var selected int
	promptUISelectRunner = func(sel promptui.Select) (int, string, error) {
		items := sel.Items.([]string)
		return selected, items[selected], nil
	}

	p := NewPrompter()
	s, err := p.CaptureStringAllowEmpty("confirm")
	require.NoError(err)
	require.Equal("YES", s)

	yes, err := p.CaptureYesNo("ok?")
	require.NoError(err)
	require.False(yes, "the first item is No")

	selected = 1
	yes, err = p.CaptureYesNo("ok?")
	require.NoError(err)
	require.True(yes)
}

func TestIsAbort(t *testing.T) {
	require.True(t, IsAbort(promptui.ErrInterrupt))
	require.False(t, IsAbort(ErrNonInteractive))
}
