// Copyright (C) 2022, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// ReadJSON reads a JSON file and unmarshals it into the provided interface
func ReadJSON(fs afero.Fs, path string, v interface{}) error {
	contentBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(contentBytes, v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from %s: %w", path, err)
	}

	return nil
}

// WriteJSON marshals v with indentation and writes it to path, syncing
// before close so a crash cannot leave a torn record behind.
func WriteJSON(fs afero.Fs, path string, v interface{}, perm os.FileMode) error {
	contentBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(contentBytes); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
