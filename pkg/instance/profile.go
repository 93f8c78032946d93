package instance

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
)

// EnvVar carries the active instance id between CLI invocations and into
// spawned helper processes.
const EnvVar = "HSU_SANDBOX_INSTANCE"

const maxInstanceIDLength = 32

// Profile selects the namespace a reconciliation unit operates in. The
// shared profile (zero value) uses unsuffixed resource names; an isolated
// profile appends "-<id>" to every derived name.
type Profile struct {
	ID     string
	Suffix string
}

// SharedProfile returns the default, unsuffixed profile.
func SharedProfile() Profile {
	return Profile{}
}

// IsolatedProfile returns a profile namespaced by the given instance id.
func IsolatedProfile(id string) Profile {
	return Profile{
		ID:     id,
		Suffix: "-" + id,
	}
}

// IsShared reports whether the profile uses the shared namespace.
func (p Profile) IsShared() bool {
	return p.ID == ""
}

// QualifyName appends the profile suffix to a base resource name.
func (p Profile) QualifyName(base string) string {
	return base + p.Suffix
}

// ResolveProfile resolves the active profile from an explicit argument,
// falling back to the EnvVar environment variable. An empty resolution
// yields the shared profile. The value "auto" derives a stable id from the
// workspace root; anything else is validated as a manual instance id.
func ResolveProfile(argValue string, workspaceRoot func() (string, error)) (Profile, error) {
	raw := argValue
	if raw == "" {
		raw = os.Getenv(EnvVar)
	}
	if raw == "" {
		return SharedProfile(), nil
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Profile{}, errors.NewValidationError(
			"instance id cannot be blank; use a-z, 0-9, and '-' only", nil)
	}

	if normalized == "auto" {
		id, err := deriveAutoInstanceID(workspaceRoot)
		if err != nil {
			return Profile{}, err
		}
		return IsolatedProfile(id), nil
	}

	if !IsValidInstanceID(normalized) {
		return Profile{}, errors.NewValidationError(
			fmt.Sprintf("invalid instance id %q, expected [a-z0-9][a-z0-9-]{0,31}", normalized), nil)
	}
	return IsolatedProfile(normalized), nil
}

// ApplyProfileEnv publishes the active profile to the process environment so
// child processes inherit the same namespace.
func ApplyProfileEnv(profile Profile) error {
	if profile.IsShared() {
		return os.Unsetenv(EnvVar)
	}
	return os.Setenv(EnvVar, profile.ID)
}

// IsValidInstanceID reports whether value matches [a-z0-9][a-z0-9-]{0,31}.
func IsValidInstanceID(value string) bool {
	if len(value) == 0 || len(value) > maxInstanceIDLength {
		return false
	}
	if !isLowerAlnum(value[0]) {
		return false
	}
	for i := 1; i < len(value); i++ {
		if !isLowerAlnum(value[i]) && value[i] != '-' {
			return false
		}
	}
	return true
}

func isLowerAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func deriveAutoInstanceID(workspaceRoot func() (string, error)) (string, error) {
	if workspaceRoot == nil {
		workspaceRoot = DefaultWorkspaceRoot
	}
	root, err := workspaceRoot()
	if err != nil {
		return "", err
	}

	canonical, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", errors.NewIOError("failed to canonicalize workspace root", err).WithContext("root", root)
	}

	return FormatWorkspaceID(canonical), nil
}

// FormatWorkspaceID derives the deterministic instance id for a canonical
// workspace path. FNV-1a-64 keeps the id stable across platforms and
// process restarts, unlike seed-randomized hashes.
func FormatWorkspaceID(canonicalPath string) string {
	h := fnv.New64a()
	h.Write([]byte(canonicalPath))
	return fmt.Sprintf("ws-%012x", h.Sum64())
}

// DefaultWorkspaceRoot resolves the workspace root as the current working
// directory.
func DefaultWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewIOError("failed to resolve current directory", err)
	}
	return dir, nil
}
