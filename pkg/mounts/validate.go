package mounts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
)

// ValidateHostPath checks that a declared host path can serve as a bind
// mount source: absolute, and either an existing directory or creatable
// under an existing directory. Violations name the path and the rule broken.
func ValidateHostPath(path string) error {
	if !filepath.IsAbs(path) {
		return errors.NewValidationError(
			fmt.Sprintf("mount host path %q is not absolute", path), nil,
		).WithContext("path", path).WithContext("rule", "absolute")
	}

	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return errors.NewValidationError(
				fmt.Sprintf("mount host path %q is not a directory", path), nil,
			).WithContext("path", path).WithContext("rule", "directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.NewIOError(
			fmt.Sprintf("failed to inspect mount host path %q", path), err,
		).WithContext("path", path)
	}

	// The path does not exist yet; it must be creatable, i.e. its nearest
	// existing ancestor must be a directory.
	ancestor := filepath.Dir(path)
	for {
		info, err := os.Stat(ancestor)
		if err == nil {
			if !info.IsDir() {
				return errors.NewValidationError(
					fmt.Sprintf("mount host path %q is not creatable: %q is not a directory", path, ancestor), nil,
				).WithContext("path", path).WithContext("rule", "creatable")
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return errors.NewIOError(
				fmt.Sprintf("failed to inspect mount host path ancestor %q", ancestor), err,
			).WithContext("path", path)
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			return nil // reached the root, which always exists
		}
		ancestor = parent
	}
}

// ValidateSafePath is the destructive-operation guard used by cleanup flows:
// the canonical path must be absolute and must not resolve to the filesystem
// root or the user's home directory.
func ValidateSafePath(path string) error {
	if !filepath.IsAbs(path) {
		return errors.NewValidationError(
			fmt.Sprintf("path %q is not absolute", path), nil,
		).WithContext("path", path).WithContext("rule", "absolute")
	}

	if isRootPath(path) {
		return errors.NewValidationError(
			"refusing to operate on filesystem root", nil,
		).WithContext("path", path).WithContext("rule", "not_root")
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeCanonical, err := filepath.EvalSymlinks(home)
		if err != nil {
			homeCanonical = home
		}
		if path == home || path == homeCanonical {
			return errors.NewValidationError(
				"refusing to operate on home directory", nil,
			).WithContext("path", path).WithContext("rule", "not_home")
		}
	}

	return nil
}

// isRootPath reports whether the path has no normal component, i.e. resolves
// to the filesystem root (or a bare volume on Windows).
func isRootPath(path string) bool {
	cleaned := filepath.Clean(path)
	rest := strings.TrimPrefix(cleaned, filepath.VolumeName(cleaned))
	return rest == string(filepath.Separator) || rest == "/" || rest == ""
}

// reservedContainerPrefixes are in-sandbox locations a bind mount would
// shadow or break.
var reservedContainerPrefixes = []string{
	"/bin", "/dev", "/etc", "/lib", "/proc", "/run", "/sbin", "/sys", "/usr",
	"/opt/hsu",
}

// ContainerPathWarning returns a non-fatal warning when the container path
// targets a reserved in-sandbox location, or "" when the target is fine.
func ContainerPathWarning(containerPath string) string {
	cleaned := filepath.Clean(containerPath)
	if cleaned == "/" {
		return "Warning: mounting over the sandbox root will break the environment."
	}
	for _, prefix := range reservedContainerPrefixes {
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+"/") {
			return fmt.Sprintf("Warning: container path %q shadows the reserved location %q.", containerPath, prefix)
		}
	}
	return ""
}
