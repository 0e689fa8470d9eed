// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/luxfi/restorepoint/pkg/constants"
)

// ErrLocked is returned when another invocation holds the catalog lock.
var ErrLocked = errors.New("another restorepoint operation is in progress")

// Lock takes the exclusive catalog lock used around create, delete and
// repair. The returned func releases it.
func (c *Catalog) Lock(ctx context.Context) (func(), error) {
	return c.lock(ctx, false)
}

// RLock takes a shared lock so a restore cannot race a delete.
func (c *Catalog) RLock(ctx context.Context) (func(), error) {
	return c.lock(ctx, true)
}

func (c *Catalog) lock(ctx context.Context, shared bool) (func(), error) {
	if err := c.Init(); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(c.baseDir, constants.LockFileName))

	ctx, cancel := context.WithTimeout(ctx, constants.LockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = fl.TryRLockContext(ctx, constants.LockRetryDelay)
	} else {
		locked, err = fl.TryLockContext(ctx, constants.LockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquiring catalog lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() { _ = fl.Unlock() }, nil
}
