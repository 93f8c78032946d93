package mounts

import (
	"strings"
)

// HostPathsMatch reports whether an observed mount source and a declared
// host path refer to the same location, tolerating the platform's path
// rewriting. Desktop container runtimes on macOS rewrite bind sources in two
// stages (/tmp -> /private/tmp -> /host_mnt/private/tmp), so equality is
// checked directly, after stripping the mount-namespace prefix, and after
// stripping both rewrites — in both directions. Unrelated paths that merely
// share a prefix never match.
func HostPathsMatch(observed, declared string) bool {
	if observed == declared {
		return true
	}

	if stripped, ok := strings.CutPrefix(observed, "/host_mnt"); ok {
		if stripped == declared {
			return true
		}
		if privateStripped, ok := strings.CutPrefix(stripped, "/private"); ok && privateStripped == declared {
			return true
		}
	}

	if privatePath, ok := strings.CutPrefix(declared, "/private"); ok && strings.HasSuffix(observed, privatePath) {
		return true
	}

	return false
}

// HasMatch reports whether a declared mount has a live counterpart with the
// same target, the same read-only flag, and a matching host path.
func HasMatch(declared ParsedMount, observed []ObservedMount) bool {
	for _, current := range observed {
		if current.Target == declared.ContainerPath &&
			current.ReadOnly == declared.ReadOnly &&
			HostPathsMatch(current.Source, declared.HostPath) {
			return true
		}
	}
	return false
}

// Equal compares live mounts against a resolved declared set, ignoring
// order: equal cardinality and every declared mount matched. Comparison
// never fails; it only answers.
func Equal(observed []ObservedMount, declared []ParsedMount) bool {
	if len(observed) != len(declared) {
		return false
	}
	for _, mount := range declared {
		if !HasMatch(mount, observed) {
			return false
		}
	}
	return true
}
