// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

/*
Package prompts provides the operator interaction primitives used to confirm
destructive actions and to pick removable volumes.

# Mode Detection

Non-interactive mode is enabled when ANY of these is true:

  - --non-interactive flag
  - RESTOREPOINT_NON_INTERACTIVE=1/true/yes/on environment variable
  - CI=1/true environment variable
  - stdin is not a TTY (piped/redirected/scripted)

In non-interactive mode every Capture call fails with ErrNonInteractive, so a
destructive command run from a script must pass --force explicitly.

# Testing

Callers depend on the Prompter interface; tests use mocks.Prompter to script
operator answers.
*/
package prompts
