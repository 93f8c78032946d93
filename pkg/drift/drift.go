package drift

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/core-tools/hsu-sandbox/pkg/channel"
	"github.com/core-tools/hsu-sandbox/pkg/logging"

	_ "embed"
)

// Tracked runtime assets are the sandbox-side files this build ships. A
// running sandbox whose copies differ was built from other sources and needs
// a rebuild before its behavior can be trusted.

//go:embed assets/bootstrap.sh
var bootstrapAsset []byte

//go:embed assets/entrypoint.sh
var entrypointAsset []byte

//go:embed assets/healthcheck.sh
var healthcheckAsset []byte

const (
	RebuildCachedCommand = "sandboxcli start --cached-rebuild-sandbox-image"
	RebuildFullCommand   = "sandboxcli start --full-rebuild-sandbox-image"
)

type trackedAsset struct {
	name          string
	containerPath string
	expectedBytes []byte
}

func trackedAssets() []trackedAsset {
	return []trackedAsset{
		{name: "bootstrap helper", containerPath: "/usr/local/bin/hsu-sandbox-bootstrap", expectedBytes: bootstrapAsset},
		{name: "entrypoint", containerPath: "/usr/local/bin/entrypoint.sh", expectedBytes: entrypointAsset},
		{name: "healthcheck", containerPath: "/usr/local/bin/healthcheck.sh", expectedBytes: healthcheckAsset},
	}
}

// Report summarizes one drift detection pass. Probe failures land in
// Diagnostics and never set DriftDetected on their own.
type Report struct {
	DriftDetected    bool
	MismatchedAssets []string
	Diagnostics      []string
}

type assetOutcome int

const (
	assetMatch assetOutcome = iota
	assetMismatch
	assetProbeFailed
)

// Detect compares embedded asset bytes against the live sandbox copies read
// through the channel. It never returns an error; anything that prevents a
// comparison becomes a diagnostic line.
func Detect(ctx context.Context, ch channel.Channel, logger logging.Logger) Report {
	var mismatched []string
	var diagnostics []string

	for _, asset := range trackedAssets() {
		switch outcome, detail := probeAsset(ctx, ch, asset); outcome {
		case assetMatch:
		case assetMismatch:
			logger.Debugf("Runtime asset differs from embedded copy, asset: %s, path: %s", asset.name, asset.containerPath)
			mismatched = append(mismatched, asset.name)
		case assetProbeFailed:
			diagnostics = append(diagnostics, fmt.Sprintf("%s: %s", asset.name, detail))
		}
	}

	return Report{
		DriftDetected:    len(mismatched) > 0,
		MismatchedAssets: mismatched,
		Diagnostics:      diagnostics,
	}
}

func probeAsset(ctx context.Context, ch channel.Channel, asset trackedAsset) (assetOutcome, string) {
	output, exitCode, err := ch.Run(ctx, "cat", asset.containerPath)
	if err != nil {
		return assetProbeFailed, fmt.Sprintf("exec failed: %v", err)
	}
	if exitCode != 0 {
		return assetProbeFailed, fmt.Sprintf("exit status %d", exitCode)
	}
	if bytes.Equal([]byte(output), asset.expectedBytes) {
		return assetMatch, ""
	}
	return assetMismatch, ""
}

// WarningLines renders a user-facing stale-sandbox warning, empty when no
// drift was detected.
func WarningLines(report Report) []string {
	if !report.DriftDetected {
		return nil
	}

	mismatched := strings.Join(report.MismatchedAssets, ", ")

	return []string{
		"Running sandbox is out of sync with local development assets.",
		fmt.Sprintf("Mismatched assets: %s", mismatched),
		fmt.Sprintf("Rebuild with: %s", RebuildCachedCommand),
		fmt.Sprintf("If needed (no cache): %s", RebuildFullCommand),
	}
}
