package mounts

// DuplicateResolution is produced when multiple declarations target the same
// container path. The last declaration wins: later entries represent more
// specific, more recent user intent.
type DuplicateResolution struct {
	ContainerPath string
	Kept          ParsedMount
	Removed       []ParsedMount
}

// NormalizeTargets deduplicates declarations by container path with
// last-wins semantics. Surviving mounts keep declaration order; every
// shadowed entry is reported in a resolution so the caller can say exactly
// what was dropped and what replaced it. Resolutions are ordered by first
// appearance of the contested target.
func NormalizeTargets(declared []ParsedMount) ([]ParsedMount, []DuplicateResolution) {
	lastIdxByTarget := make(map[string]int)
	var targetOrder []string

	for idx, mount := range declared {
		if _, seen := lastIdxByTarget[mount.ContainerPath]; !seen {
			targetOrder = append(targetOrder, mount.ContainerPath)
		}
		lastIdxByTarget[mount.ContainerPath] = idx
	}

	var normalized []ParsedMount
	removedByTarget := make(map[string][]ParsedMount)
	keptByTarget := make(map[string]ParsedMount)

	for idx, mount := range declared {
		if lastIdxByTarget[mount.ContainerPath] == idx {
			keptByTarget[mount.ContainerPath] = mount
			normalized = append(normalized, mount)
		} else {
			removedByTarget[mount.ContainerPath] = append(removedByTarget[mount.ContainerPath], mount)
		}
	}

	var resolutions []DuplicateResolution
	for _, target := range targetOrder {
		removed := removedByTarget[target]
		if len(removed) == 0 {
			continue
		}
		resolutions = append(resolutions, DuplicateResolution{
			ContainerPath: target,
			Kept:          keptByTarget[target],
			Removed:       removed,
		})
	}

	return normalized, resolutions
}
