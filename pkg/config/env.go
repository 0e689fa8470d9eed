// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "strings"

// base-dir -> RESTOREPOINT_BASE_DIR
var envKeyReplacer = strings.NewReplacer("-", "_")
