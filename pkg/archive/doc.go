// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package archive runs the system tar to build and expand gzip compressed
// restore point archives. tar only walks and packs the tree; compression
// happens in process so the level is configurable and progress can be
// measured on the uncompressed stream.
package archive
