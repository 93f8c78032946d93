package mounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
)

// CleanupResult accumulates the outcome of a mount cleanup pass. One failing
// path never aborts the others.
type CleanupResult struct {
	Cleaned []string
	Purged  []string
	Skipped []string
	Errors  *errors.ErrorCollection
}

// HasErrors reports whether any path failed.
func (r *CleanupResult) HasErrors() bool {
	return r.Errors.HasErrors()
}

// Cleanup empties (or with purge, removes) the host directories of the given
// mounts. Every path passes the destructive-operation guard after symlink
// resolution before anything is touched.
func Cleanup(declared []ParsedMount, purge bool, logger logging.Logger) CleanupResult {
	result := CleanupResult{
		Errors: errors.NewErrorCollection(),
	}

	for _, mount := range declared {
		hostPath := mount.HostPath
		outcome, path, err := cleanupSingleMount(hostPath, purge, logger)
		switch {
		case err != nil:
			result.Errors.Add(errors.NewIOError(
				fmt.Sprintf("mount cleanup failed for %q", hostPath), err,
			).WithContext("host_path", hostPath))
		case outcome == cleanupSkipped:
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: %s", hostPath, path))
		case outcome == cleanupPurged:
			result.Purged = append(result.Purged, path)
		case outcome == cleanupCleaned:
			result.Cleaned = append(result.Cleaned, path)
		}
	}

	return result
}

type cleanupOutcome int

const (
	cleanupCleaned cleanupOutcome = iota
	cleanupPurged
	cleanupSkipped
)

// cleanupSingleMount returns the outcome and either the canonical path acted
// on or, for skips, the reason.
func cleanupSingleMount(path string, purge bool, logger logging.Logger) (cleanupOutcome, string, error) {
	if !filepath.IsAbs(path) {
		return 0, "", errors.NewValidationError("mount path is not absolute", nil).WithContext("path", path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if purge {
			return cleanupSkipped, "path does not exist", nil
		}
		if err := ensureDirExists(path); err != nil {
			return 0, "", err
		}
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return 0, "", errors.NewIOError("failed to resolve path for cleanup", err).WithContext("path", path)
	}

	if err := ValidateSafePath(canonical); err != nil {
		return 0, "", err
	}

	if purge {
		logger.Infof("Purging mount directory, path: %s", canonical)
		if err := os.RemoveAll(canonical); err != nil {
			return 0, "", errors.NewIOError("failed to remove directory", err).WithContext("path", canonical)
		}
		if err := removeSymlinkIfNeeded(path, canonical); err != nil {
			return 0, "", err
		}
		return cleanupPurged, canonical, nil
	}

	logger.Infof("Cleaning mount directory contents, path: %s", canonical)
	if err := ensureDirExists(canonical); err != nil {
		return 0, "", err
	}
	if err := cleanDirContents(canonical); err != nil {
		return 0, "", err
	}
	return cleanupCleaned, canonical, nil
}

func ensureDirExists(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return errors.NewValidationError("mount path is not a directory", nil).WithContext("path", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.NewIOError("failed to read mount path metadata", err).WithContext("path", path)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.NewIOError("failed to create mount directory", err).WithContext("path", path)
	}
	return nil
}

// removeSymlinkIfNeeded removes the declared path when it was a symlink to
// the purged canonical directory, so a dangling link is not left behind.
func removeSymlinkIfNeeded(original, canonical string) error {
	if original == canonical {
		return nil
	}

	info, err := os.Lstat(original)
	if err != nil {
		return nil
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(original); err != nil {
			return errors.NewIOError("failed to remove symlink", err).WithContext("path", original)
		}
	}

	return nil
}

// cleanDirContents removes everything inside path but keeps the directory
// itself. Symlinked children are unlinked, never followed.
func cleanDirContents(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.NewIOError("failed to read directory", err).WithContext("path", path)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())
		info, err := os.Lstat(entryPath)
		if err != nil {
			return errors.NewIOError("failed to read entry metadata", err).WithContext("path", entryPath)
		}

		if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			if err := os.RemoveAll(entryPath); err != nil {
				return errors.NewIOError("failed to remove directory", err).WithContext("path", entryPath)
			}
		} else {
			if err := os.Remove(entryPath); err != nil {
				return errors.NewIOError("failed to remove file", err).WithContext("path", entryPath)
			}
		}
	}

	return nil
}
