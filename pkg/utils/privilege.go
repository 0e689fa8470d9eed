// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"github.com/luxfi/restorepoint/pkg/constants"
	"golang.org/x/sys/unix"
)

// geteuid is a variable for testing purposes
var geteuid = unix.Geteuid

// CheckRoot fails with constants.ErrPrivilege unless the effective uid is 0.
func CheckRoot() error {
	if geteuid() != 0 {
		return constants.ErrPrivilege
	}
	return nil
}
