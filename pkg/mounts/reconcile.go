package mounts

// Declaration is one raw mount declaration together with where it came from.
type Declaration struct {
	Spec   string
	Origin Origin
}

// MountStatus is the per-mount outcome of a reconciliation.
type MountStatus struct {
	Mount   ParsedMount
	Matched bool
}

// Reconciliation is the full result of comparing declared mounts against the
// live environment. Reconciliation itself never fails: malformed entries are
// reported as skipped, duplicate targets as resolutions, and the comparison
// answers with a boolean plus per-mount detail.
type Reconciliation struct {
	// InSync is true when the surviving declared set and the live set match
	// exactly (same cardinality, every declared mount matched).
	InSync bool
	// Statuses lists each surviving declared mount and whether a live mount
	// matched it, in declaration order.
	Statuses []MountStatus
	// Duplicates lists the last-wins resolutions applied before comparing.
	Duplicates []DuplicateResolution
	// Skipped lists declarations that did not parse.
	Skipped []SkippedMount
	// Unexpected counts live mounts with no declared counterpart.
	Unexpected int
}

// Reconcile computes the authoritative mount set from possibly-conflicting
// declarations and compares it to observed reality.
func Reconcile(declared []Declaration, observed []ObservedMount) Reconciliation {
	var result Reconciliation

	var parsed []ParsedMount
	for _, declaration := range declared {
		mount, err := Parse(declaration.Spec)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedMount{
				Spec:   declaration.Spec,
				Reason: err.Error(),
			})
			continue
		}
		mount.Origin = declaration.Origin
		parsed = append(parsed, mount)
	}

	normalized, resolutions := NormalizeTargets(parsed)
	result.Duplicates = resolutions

	matched := 0
	for _, mount := range normalized {
		hasMatch := HasMatch(mount, observed)
		if hasMatch {
			matched++
		}
		result.Statuses = append(result.Statuses, MountStatus{
			Mount:   mount,
			Matched: hasMatch,
		})
	}

	result.Unexpected = len(observed) - matched
	if result.Unexpected < 0 {
		result.Unexpected = 0
	}
	result.InSync = Equal(observed, normalized)

	return result
}

// ReconcileSpecs is a convenience wrapper over Reconcile for callers holding
// plain persisted declaration strings.
func ReconcileSpecs(specs []string, observed []ObservedMount) Reconciliation {
	declared := make([]Declaration, 0, len(specs))
	for _, spec := range specs {
		declared = append(declared, Declaration{Spec: spec, Origin: OriginConfig})
	}
	return Reconcile(declared, observed)
}
