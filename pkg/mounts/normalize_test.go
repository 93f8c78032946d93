package mounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, specs ...string) []ParsedMount {
	t.Helper()
	var parsed []ParsedMount
	for _, spec := range specs {
		mount, err := Parse(spec)
		require.NoError(t, err)
		parsed = append(parsed, mount)
	}
	return parsed
}

func TestNormalizeTargetsLastWins(t *testing.T) {
	declared := mustParse(t,
		"/old/data:/workspace/data",
		"/var/cache:/cache",
		"/new/data:/workspace/data:ro",
	)

	normalized, resolutions := NormalizeTargets(declared)

	require.Len(t, normalized, 2)
	assert.Equal(t, "/var/cache", normalized[0].HostPath)
	assert.Equal(t, "/new/data", normalized[1].HostPath)
	assert.True(t, normalized[1].ReadOnly)

	require.Len(t, resolutions, 1)
	assert.Equal(t, "/workspace/data", resolutions[0].ContainerPath)
	assert.Equal(t, "/new/data", resolutions[0].Kept.HostPath)
	require.Len(t, resolutions[0].Removed, 1)
	assert.Equal(t, "/old/data", resolutions[0].Removed[0].HostPath)
}

func TestNormalizeTargetsNoDuplicates(t *testing.T) {
	declared := mustParse(t,
		"/a:/data",
		"/b:/cache",
	)

	normalized, resolutions := NormalizeTargets(declared)

	assert.Equal(t, declared, normalized)
	assert.Empty(t, resolutions)
}

func TestNormalizeTargetsResolutionOrder(t *testing.T) {
	// Three declarations for one target: the last wins, the earlier two are
	// reported in declaration order.
	declared := mustParse(t,
		"/first:/data",
		"/second:/data",
		"/third:/data",
	)

	normalized, resolutions := NormalizeTargets(declared)

	require.Len(t, normalized, 1)
	assert.Equal(t, "/third", normalized[0].HostPath)

	require.Len(t, resolutions, 1)
	require.Len(t, resolutions[0].Removed, 2)
	assert.Equal(t, "/first", resolutions[0].Removed[0].HostPath)
	assert.Equal(t, "/second", resolutions[0].Removed[1].HostPath)
}

func TestNormalizeTargetsEmpty(t *testing.T) {
	normalized, resolutions := NormalizeTargets(nil)

	assert.Empty(t, normalized)
	assert.Empty(t, resolutions)
}
