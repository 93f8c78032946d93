package mounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/core-tools/hsu-sandbox/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupLogger() logging.Logger {
	return logging.NewLogger("test , ", logging.LogFuncs{})
}

func TestCleanupCleansContents(t *testing.T) {
	dir := t.TempDir()
	mountDir := filepath.Join(dir, "mount")
	require.NoError(t, os.MkdirAll(filepath.Join(mountDir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mountDir, "file.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mountDir, "nested", "deep.txt"), []byte("x"), 0o644))

	result := Cleanup([]ParsedMount{{HostPath: mountDir, ContainerPath: "/data"}}, false, cleanupLogger())

	assert.False(t, result.HasErrors())
	assert.Len(t, result.Cleaned, 1)
	assert.Empty(t, result.Purged)

	// The directory itself survives, emptied.
	entries, err := os.ReadDir(mountDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanupPurgeRemovesDirectory(t *testing.T) {
	dir := t.TempDir()
	mountDir := filepath.Join(dir, "mount")
	require.NoError(t, os.MkdirAll(mountDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mountDir, "file.txt"), []byte("x"), 0o644))

	result := Cleanup([]ParsedMount{{HostPath: mountDir, ContainerPath: "/data"}}, true, cleanupLogger())

	assert.False(t, result.HasErrors())
	assert.Len(t, result.Purged, 1)
	_, err := os.Stat(mountDir)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupPurgeSkipsMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "never-created")

	result := Cleanup([]ParsedMount{{HostPath: missing, ContainerPath: "/data"}}, true, cleanupLogger())

	assert.False(t, result.HasErrors())
	assert.Empty(t, result.Purged)
	assert.Len(t, result.Skipped, 1)
}

func TestCleanupCreatesMissingPathForClean(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "fresh")

	result := Cleanup([]ParsedMount{{HostPath: missing, ContainerPath: "/data"}}, false, cleanupLogger())

	assert.False(t, result.HasErrors())
	assert.Len(t, result.Cleaned, 1)
	info, err := os.Stat(missing)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCleanupRefusesUnsafePaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	for _, path := range []string{"/", home} {
		result := Cleanup([]ParsedMount{{HostPath: path, ContainerPath: "/data"}}, true, cleanupLogger())
		assert.True(t, result.HasErrors(), "expected refusal for %q", path)
		assert.Empty(t, result.Purged)
	}
}

func TestCleanupPurgeRemovesSymlink(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.MkdirAll(realDir, 0o755))
	require.NoError(t, os.Symlink(realDir, link))

	result := Cleanup([]ParsedMount{{HostPath: link, ContainerPath: "/data"}}, true, cleanupLogger())

	assert.False(t, result.HasErrors())
	// Both the canonical directory and the dangling link are gone.
	_, err := os.Stat(realDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(link)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupAccumulatesPerPathErrors(t *testing.T) {
	good := filepath.Join(t.TempDir(), "good")
	require.NoError(t, os.MkdirAll(good, 0o755))

	result := Cleanup([]ParsedMount{
		{HostPath: "relative", ContainerPath: "/data"},
		{HostPath: good, ContainerPath: "/cache"},
	}, false, cleanupLogger())

	// One bad path never blocks the others.
	assert.True(t, result.HasErrors())
	assert.Len(t, result.Cleaned, 1)
}
