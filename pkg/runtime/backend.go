package runtime

import (
	"context"
	"strings"

	"github.com/core-tools/hsu-sandbox/pkg/channel"
	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/probes"
)

// Canonical in-sandbox locations. Both backends probe the same logical
// resources; only the access path differs.
const (
	DefaultContainerName     = "hsu-sandbox"
	DefaultBrokerProcessName = "sandbox-broker"
	DefaultBrokerServiceUnit = "sandbox-broker.service"
	DefaultBrokerSocketPath  = "/run/hsu/broker.sock"
	DefaultServiceBinaryPath = "/opt/hsu/bin/sandboxd"
	DefaultCommitFilePath    = "/opt/hsu/COMMIT"
	DefaultImageVersionPath  = "/etc/hsu-sandbox-version"
)

// Backend is the probe/metadata capability set for one execution context.
// The host backend reaches the sandbox through a published port and an
// out-of-band exec channel; the embedded backend performs the same
// logically-shaped operations via local inspection. Given identical
// underlying truth, both must yield identical probe outputs.
type Backend interface {
	// ProbeServiceHTTPHealth performs one bounded HTTP health probe of the
	// sandbox service. All negative-but-valid signals are result values.
	ProbeServiceHTTPHealth(ctx context.Context, bindAddr string, port int) (probes.HTTPProbeResult, error)

	// ProbeBrokerProcessActive reports whether the broker process is running.
	ProbeBrokerProcessActive(ctx context.Context) (bool, error)

	// ProbeBrokerSocketPresent reports whether the broker socket exists.
	ProbeBrokerSocketPresent(ctx context.Context) (bool, error)

	// ReadServiceVersion returns the service version if present. Absence is
	// a valid outcome; the error is reserved for channel-level failure.
	ReadServiceVersion(ctx context.Context) (string, bool, error)

	// ReadServiceCommit returns the short service commit if present.
	ReadServiceCommit(ctx context.Context) (string, bool, error)

	// ReadImageVersion returns the sandbox image version if present.
	ReadImageVersion(ctx context.Context) (string, bool, error)

	// Capabilities reports what this execution context can assert about
	// itself. Cheap, never fails.
	Capabilities() Capabilities
}

// HTTPProber performs one HTTP health probe. Backends take it as a seam so
// parity tests can drive both implementations with identical synthetic
// signals.
type HTTPProber func(ctx context.Context, host string, port int, options probes.HTTPProbeOptions, logger logging.Logger) probes.HTTPProbeResult

// readMetadataFile reads a metadata file through the channel. A missing file
// is a valid outcome, not a failure; both backends share this mapping so that
// the same file content always yields the same result.
func readMetadataFile(ctx context.Context, ch channel.Channel, path string) (string, bool, error) {
	contents, err := ch.ReadFile(ctx, path)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return contents, true, nil
}

// firstLine extracts the first non-empty trimmed line of command output.
func firstLine(output string) (string, bool) {
	line := output
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		line = output[:idx]
	}
	line = strings.TrimSpace(line)
	return line, line != ""
}

// extractShortCommit picks the first token of at least 7 hex digits that
// contains a hex letter and truncates it to 7 characters. Purely numeric
// tokens are skipped so date-stamped version strings never masquerade as
// commits.
func extractShortCommit(output string) (string, bool) {
	tokens := strings.FieldsFunc(output, func(ch rune) bool {
		return !isHexDigit(ch)
	})

	for _, token := range tokens {
		if len(token) < 7 {
			continue
		}
		if !containsHexLetter(token) {
			continue
		}
		return token[:7], true
	}

	return "", false
}

func containsHexLetter(token string) bool {
	for _, ch := range token {
		if isHexLetter(ch) {
			return true
		}
	}
	return false
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || isHexLetter(ch)
}

func isHexLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
