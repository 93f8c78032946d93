package runtime

import (
	"context"
	"os"

	"github.com/core-tools/hsu-sandbox/pkg/channel"
	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/probes"
)

// ContainerBackendOptions configures an embedded backend. Paths are
// injectable so tests can point the backend at synthetic files.
type ContainerBackendOptions struct {
	// SupervisorAvailable is detected once at construction time by the
	// caller; the embedded backend can assert it as a capability.
	SupervisorAvailable bool

	BrokerProcessName string
	BrokerServiceUnit string
	BrokerSocketPath  string
	ServiceBinaryPath string
	CommitFilePath    string
	ImageVersionPath  string
	HTTPProbe         probes.HTTPProbeOptions
	Prober            HTTPProber
}

// containerBackend performs the same logically-shaped probes as the host
// backend, but via local process, socket, and file inspection from inside
// the environment it reports on.
type containerBackend struct {
	ch      channel.Channel
	options ContainerBackendOptions
	logger  logging.Logger
}

// NewContainerBackend creates the backend used by a controller embedded in
// the sandbox environment.
func NewContainerBackend(ch channel.Channel, options ContainerBackendOptions, logger logging.Logger) Backend {
	applyContainerBackendDefaults(&options)
	return &containerBackend{
		ch:      ch,
		options: options,
		logger:  logger,
	}
}

func applyContainerBackendDefaults(options *ContainerBackendOptions) {
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

func (b *containerBackend) ProbeServiceHTTPHealth(ctx context.Context, bindAddr string, port int) (probes.HTTPProbeResult, error) {
	// Inside the sandbox the service is always reachable on loopback,
	// whatever address it publishes externally.
	return b.options.Prober(ctx, "127.0.0.1", port, b.options.HTTPProbe, b.logger), nil
}

func (b *containerBackend) ProbeBrokerProcessActive(ctx context.Context) (bool, error) {
	if b.options.SupervisorAvailable {
		_, exitCode, err := b.ch.Run(ctx, "systemctl", "is-active", "--quiet", b.options.BrokerServiceUnit)
		if err != nil {
			return false, errors.NewProbeError("broker process probe failed", err)
		}
		return exitCode == 0, nil
	}

	_, exitCode, err := b.ch.Run(ctx, "pgrep", "-x", b.options.BrokerProcessName)
	if err != nil {
		return false, errors.NewProbeError("broker process probe failed", err)
	}
	return exitCode == 0, nil
}

func (b *containerBackend) ProbeBrokerSocketPresent(ctx context.Context) (bool, error) {
	_, err := os.Stat(b.options.BrokerSocketPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.NewProbeError("broker socket probe failed", err).WithContext("socket_path", b.options.BrokerSocketPath)
	}
	return true, nil
}

func (b *containerBackend) ReadServiceVersion(ctx context.Context) (string, bool, error) {
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

func (b *containerBackend) ReadServiceCommit(ctx context.Context) (string, bool, error) {
	contents, found, err := readMetadataFile(ctx, b.ch, b.options.CommitFilePath)
	if err != nil || !found {
		return "", false, err
	}
	commit, ok := extractShortCommit(contents)
	return commit, ok, nil
}

func (b *containerBackend) ReadImageVersion(ctx context.Context) (string, bool, error) {
	contents, found, err := readMetadataFile(ctx, b.ch, b.options.ImageVersionPath)
	if err != nil || !found {
		return "", false, err
	}
	version, ok := firstLine(contents)
	return version, ok, nil
}

func (b *containerBackend) Capabilities() Capabilities {
	supervisor := b.options.SupervisorAvailable
	diagnostics := b.options.SupervisorAvailable
	rootRequired := true
	return Capabilities{
		SupervisorAvailable:           &supervisor,
		DiagnosticsAvailable:          &diagnostics,
		RootRequiredForUserManagement: &rootRequired,
	}
}

// DetectSupervisor reports whether an init system manages services in the
// current environment. Used when wiring an embedded backend.
func DetectSupervisor() bool {
	info, err := os.Stat("/run/systemd/system")
	return err == nil && info.IsDir()
}
