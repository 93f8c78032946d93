package mounts

import (
	"fmt"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
)

// Collection is the result of a lenient scan over persisted declarations:
// parseable entries plus the raw strings that were skipped. Cleanup flows
// use it so one corrupt entry does not block maintenance of the others.
type Collection struct {
	Mounts  []ParsedMount
	Skipped []SkippedMount
}

// SkippedMount names a declaration that could not be used and why.
type SkippedMount struct {
	Spec   string
	Reason string
}

// Collect parses, normalizes, and validates the full declared mount set for
// a strict pre-flight flow. Config entries precede overrides, so an override
// targeting the same container path wins. Any parse or validation error
// aborts: proceeding with a partially understood mount set before a service
// start would be unsafe.
func Collect(configSpecs, overrideSpecs []string) ([]ParsedMount, []DuplicateResolution, error) {
	var all []ParsedMount

	for _, spec := range configSpecs {
		parsed, err := Parse(spec)
		if err != nil {
			return nil, nil, errors.NewParseError(
				fmt.Sprintf("invalid config mount %q", spec), err,
			).WithContext("spec", spec).WithContext("origin", string(OriginConfig))
		}
		parsed.Origin = OriginConfig
		all = append(all, parsed)
	}

	for _, spec := range overrideSpecs {
		parsed, err := Parse(spec)
		if err != nil {
			return nil, nil, errors.NewParseError(
				fmt.Sprintf("invalid mount %q", spec), err,
			).WithContext("spec", spec).WithContext("origin", string(OriginOverride))
		}
		parsed.Origin = OriginOverride
		all = append(all, parsed)
	}

	normalized, resolutions := NormalizeTargets(all)

	for _, mount := range normalized {
		if err := ValidateHostPath(mount.HostPath); err != nil {
			return nil, nil, errors.NewValidationError(
				fmt.Sprintf("mount path validation failed for %q", mount.HostPath), err,
			).WithContext("host_path", mount.HostPath)
		}
	}

	return normalized, resolutions, nil
}

// CollectLenient parses persisted declarations, skipping the ones that do
// not parse instead of failing.
func CollectLenient(specs []string) Collection {
	var collection Collection

	for _, spec := range specs {
		parsed, err := Parse(spec)
		if err != nil {
			collection.Skipped = append(collection.Skipped, SkippedMount{
				Spec:   spec,
				Reason: err.Error(),
			})
			continue
		}
		parsed.Origin = OriginConfig
		collection.Mounts = append(collection.Mounts, parsed)
	}

	return collection
}
