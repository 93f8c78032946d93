package mounts

import (
	"fmt"
	"strings"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
)

// Origin records where a mount declaration came from. Persisted config
// entries conceptually precede command-line overrides, and the distinction
// is kept through reconciliation for display.
type Origin string

const (
	OriginConfig   Origin = "config"
	OriginOverride Origin = "override"
)

// ParsedMount is one declared bind mount, parsed from the stable on-disk
// form `hostPath:containerPath[:ro]`. Declarations are persisted as plain
// strings; the parsed form lives only within a single invocation.
type ParsedMount struct {
	HostPath      string
	ContainerPath string
	ReadOnly      bool
	Origin        Origin
}

// ObservedMount is one bind mount read from live inspection of the running
// environment.
type ObservedMount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// Parse parses a mount declaration string. The format is stable across
// versions: hostPath:containerPath with an optional trailing :ro flag, and
// the container path must be absolute.
func Parse(spec string) (ParsedMount, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return ParsedMount{}, errors.NewParseError(
			fmt.Sprintf("invalid mount declaration %q: expected hostPath:containerPath[:ro]", spec), nil,
		).WithContext("spec", spec)
	}

	hostPath := parts[0]
	containerPath := parts[1]

	if hostPath == "" {
		return ParsedMount{}, errors.NewParseError(
			fmt.Sprintf("invalid mount declaration %q: host path is empty", spec), nil,
		).WithContext("spec", spec)
	}
	if containerPath == "" {
		return ParsedMount{}, errors.NewParseError(
			fmt.Sprintf("invalid mount declaration %q: container path is empty", spec), nil,
		).WithContext("spec", spec)
	}
	if !strings.HasPrefix(containerPath, "/") {
		return ParsedMount{}, errors.NewParseError(
			fmt.Sprintf("invalid mount declaration %q: container path must be absolute", spec), nil,
		).WithContext("spec", spec).WithContext("container_path", containerPath)
	}

	readOnly := false
	if len(parts) == 3 {
		if parts[2] != "ro" {
			return ParsedMount{}, errors.NewParseError(
				fmt.Sprintf("invalid mount declaration %q: unknown flag %q, only 'ro' is supported", spec, parts[2]), nil,
			).WithContext("spec", spec)
		}
		readOnly = true
	}

	return ParsedMount{
		HostPath:      hostPath,
		ContainerPath: containerPath,
		ReadOnly:      readOnly,
	}, nil
}

// String serializes the mount back into its declaration form. Plain
// read-write specs round-trip exactly.
func (m ParsedMount) String() string {
	if m.ReadOnly {
		return m.HostPath + ":" + m.ContainerPath + ":ro"
	}
	return m.HostPath + ":" + m.ContainerPath
}

// Display renders the mount for human-facing listings.
func (m ParsedMount) Display() string {
	mode := "rw"
	if m.ReadOnly {
		mode = "ro"
	}
	return fmt.Sprintf("%s -> %s (%s)", m.HostPath, m.ContainerPath, mode)
}
