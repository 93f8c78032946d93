package runtime

import (
	"context"
	"fmt"

	"github.com/core-tools/hsu-sandbox/pkg/channel"
	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/probes"
)

// HostBackendOptions configures a host backend. Zero values fall back to the
// canonical in-sandbox locations.
type HostBackendOptions struct {
	BrokerProcessName string
	BrokerServiceUnit string
	BrokerSocketPath  string
	ServiceBinaryPath string
	CommitFilePath    string
	ImageVersionPath  string
	HTTPProbe         probes.HTTPProbeOptions
	Prober            HTTPProber
}

// hostBackend reaches the sandbox from outside: HTTP probes against the
// published port, everything else through the out-of-band exec channel.
type hostBackend struct {
	ch      channel.Channel
	options HostBackendOptions
	logger  logging.Logger
}

// NewHostBackend creates the backend used by a controller running outside
// the sandbox environment.
func NewHostBackend(ch channel.Channel, options HostBackendOptions, logger logging.Logger) Backend {
	applyHostBackendDefaults(&options)
	return &hostBackend{
		ch:      ch,
		options: options,
		logger:  logger,
	}
}

func applyHostBackendDefaults(options *HostBackendOptions) {
	if options.BrokerProcessName == "" {
		options.BrokerProcessName = DefaultBrokerProcessName
	}
	if options.BrokerServiceUnit == "" {
		options.BrokerServiceUnit = DefaultBrokerServiceUnit
	}
	if options.BrokerSocketPath == "" {
		options.BrokerSocketPath = DefaultBrokerSocketPath
	}
	if options.ServiceBinaryPath == "" {
		options.ServiceBinaryPath = DefaultServiceBinaryPath
	}
	if options.CommitFilePath == "" {
		options.CommitFilePath = DefaultCommitFilePath
	}
	if options.ImageVersionPath == "" {
		options.ImageVersionPath = DefaultImageVersionPath
	}
	if options.HTTPProbe.Timeout <= 0 {
		options.HTTPProbe = probes.DefaultHTTPProbeOptions()
	}
	if options.Prober == nil {
		options.Prober = probes.CheckHTTP
	}
}

func (b *hostBackend) ProbeServiceHTTPHealth(ctx context.Context, bindAddr string, port int) (probes.HTTPProbeResult, error) {
	host := probes.NormalizeBindAddr(bindAddr)
	return b.options.Prober(ctx, host, port, b.options.HTTPProbe, b.logger), nil
}

func (b *hostBackend) ProbeBrokerProcessActive(ctx context.Context) (bool, error) {
	// Prefer the supervisor's view when an init system is present in the
	// sandbox; fall back to a plain process lookup otherwise.
	script := fmt.Sprintf(
		"if [ -d /run/systemd/system ]; then systemctl is-active --quiet %s; else pgrep -x %s >/dev/null; fi",
		b.options.BrokerServiceUnit, b.options.BrokerProcessName,
	)
	_, exitCode, err := channel.RunShell(ctx, b.ch, script)
	if err != nil {
		return false, errors.NewProbeError("broker process probe failed", err)
	}
	return exitCode == 0, nil
}

func (b *hostBackend) ProbeBrokerSocketPresent(ctx context.Context) (bool, error) {
	script := fmt.Sprintf("test -S %s", b.options.BrokerSocketPath)
	_, exitCode, err := channel.RunShell(ctx, b.ch, script)
	if err != nil {
		return false, errors.NewProbeError("broker socket probe failed", err)
	}
	return exitCode == 0, nil
}

func (b *hostBackend) ReadServiceVersion(ctx context.Context) (string, bool, error) {
	output, exitCode, err := b.ch.Run(ctx, b.options.ServiceBinaryPath, "--version")
	if err != nil {
		return "", false, err
	}
	if exitCode != 0 {
		return "", false, nil
	}
	version, ok := firstLine(output)
	return version, ok, nil
}

func (b *hostBackend) ReadServiceCommit(ctx context.Context) (string, bool, error) {
	contents, found, err := readMetadataFile(ctx, b.ch, b.options.CommitFilePath)
	if err != nil || !found {
		return "", false, err
	}
	commit, ok := extractShortCommit(contents)
	return commit, ok, nil
}

func (b *hostBackend) ReadImageVersion(ctx context.Context) (string, bool, error) {
	contents, found, err := readMetadataFile(ctx, b.ch, b.options.ImageVersionPath)
	if err != nil || !found {
		return "", false, err
	}
	version, ok := firstLine(contents)
	return version, ok, nil
}

func (b *hostBackend) Capabilities() Capabilities {
	// The host cannot introspect the sandbox init system; every field stays
	// unknown rather than guessed.
	return Capabilities{}
}
