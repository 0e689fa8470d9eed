// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dependencies

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// MinTarVersion is the oldest GNU tar whose --anchored, --overwrite and
// stdin handling the archiver relies on.
const MinTarVersion = "v1.27"

var gnuTarVersion = regexp.MustCompile(`\(GNU tar\)\s+(\d+(?:\.\d+){0,2})`)

// ParseTarVersion extracts a semver version from `tar --version` output.
func ParseTarVersion(output string) (string, error) {
	m := gnuTarVersion.FindStringSubmatch(output)
	if m == nil {
		firstLine, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
		return "", fmt.Errorf("GNU tar is required, found %q", firstLine)
	}
	return "v" + m[1], nil
}

// CheckVersionIsOverMin returns an error if version is below minVersion.
func CheckVersionIsOverMin(dependencyName, version, minVersion string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("invalid %s version %q", dependencyName, version)
	}
	// version has to be at least the minimum version specified for the dependency
	if semver.Compare(version, minVersion) == -1 {
		return fmt.Errorf("minimum version of %s that is supported is %s, found %s", dependencyName, minVersion, version)
	}
	return nil
}

// CheckTar runs tarPath --version and verifies it is a recent enough GNU tar.
func CheckTar(ctx context.Context, tarPath string) (string, error) {
	out, err := exec.CommandContext(ctx, tarPath, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("running %s --version: %w", tarPath, err)
	}
	version, err := ParseTarVersion(string(out))
	if err != nil {
		return "", err
	}
	if err := CheckVersionIsOverMin("tar", version, MinTarVersion); err != nil {
		return "", err
	}
	return version, nil
}
