package mounts

import (
	"testing"

	"github.com/core-tools/hsu-sandbox/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		expected  ParsedMount
		shouldErr bool
	}{
		{
			name:     "read_write",
			spec:     "/home/user/data:/workspace/data",
			expected: ParsedMount{HostPath: "/home/user/data", ContainerPath: "/workspace/data"},
		},
		{
			name:     "read_only",
			spec:     "/home/user/data:/workspace/data:ro",
			expected: ParsedMount{HostPath: "/home/user/data", ContainerPath: "/workspace/data", ReadOnly: true},
		},
		{
			name:      "missing_container_path",
			spec:      "/home/user/data",
			shouldErr: true,
		},
		{
			name:      "empty_host_path",
			spec:      ":/workspace/data",
			shouldErr: true,
		},
		{
			name:      "empty_container_path",
			spec:      "/home/user/data:",
			shouldErr: true,
		},
		{
			name:      "relative_container_path",
			spec:      "/home/user/data:workspace/data",
			shouldErr: true,
		},
		{
			name:      "unknown_flag",
			spec:      "/home/user/data:/workspace/data:rw",
			shouldErr: true,
		},
		{
			name:      "too_many_parts",
			spec:      "/a:/b:ro:extra",
			shouldErr: true,
		},
		{
			name:      "empty",
			spec:      "",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.spec)

			if tt.shouldErr {
				require.Error(t, err)
				assert.True(t, errors.IsParseError(err))
				assert.Contains(t, err.Error(), tt.spec)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, parsed)
			}
		})
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	specs := []string{
		"/home/user/data:/workspace/data",
		"/var/cache:/cache:ro",
	}

	for _, spec := range specs {
		parsed, err := Parse(spec)
		require.NoError(t, err)
		assert.Equal(t, spec, parsed.String())
	}
}

func TestDisplay(t *testing.T) {
	rw := ParsedMount{HostPath: "/data", ContainerPath: "/workspace"}
	ro := ParsedMount{HostPath: "/data", ContainerPath: "/workspace", ReadOnly: true}

	assert.Equal(t, "/data -> /workspace (rw)", rw.Display())
	assert.Equal(t, "/data -> /workspace (ro)", ro.Display())
}
