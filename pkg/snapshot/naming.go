// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"fmt"
	"time"

	"github.com/luxfi/restorepoint/pkg/constants"
)

// NewName returns <kind>_<YYYYMMDD_HHMMSS>, adding a _2, _3, ... suffix
// while exists reports the name as taken. Call it under the catalog lock.
func NewName(kind Kind, now time.Time, exists func(string) bool) string {
	base := fmt.Sprintf("%s_%s", kind, now.Format(constants.TimestampLayout))
	if !exists(base) {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if !exists(name) {
			return name
		}
	}
}
