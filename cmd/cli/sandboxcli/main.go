package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/core-tools/hsu-sandbox/pkg/channel"
	"github.com/core-tools/hsu-sandbox/pkg/config"
	"github.com/core-tools/hsu-sandbox/pkg/drift"
	"github.com/core-tools/hsu-sandbox/pkg/instance"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/mounts"
	"github.com/core-tools/hsu-sandbox/pkg/probes"
	"github.com/core-tools/hsu-sandbox/pkg/runtime"

	flags "github.com/jessevdk/go-flags"
)

type globalOptions struct {
	ConfigPath string `long:"config" description:"path to the configuration file"`
	Instance   string `long:"sandbox-instance" description:"instance namespace id, or 'auto'"`
	Embedded   bool   `long:"embedded" description:"probe the local environment instead of a sandbox container"`
	LogLevel   string `long:"log-level" default:"warn" description:"log level (debug, info, warn, error)"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

// cliEnv bundles what every command needs: config, instance profile, logger
// and the channel/backend pair matching the --embedded flag.
type cliEnv struct {
	config  *config.Config
	profile instance.Profile
	channel channel.Channel
	backend runtime.Backend
	logger  logging.Logger
}

func (g *globalOptions) buildEnv() (*cliEnv, error) {
	zapAdapter, err := logging.NewZapAdapter(logging.ZapConfig{
		Level:  g.LogLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(logPrefix("hsu-sandbox"), zapAdapter.Funcs())

	configPath := g.ConfigPath
	if configPath == "" {
		configPath, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		logger.Debugf("Configuration not loaded, using defaults, path: %s, error: %v", configPath, err)
		cfg = config.NewConfig()
	}

	profile, err := instance.ResolveProfile(g.Instance, nil)
	if err != nil {
		return nil, err
	}

	env := &cliEnv{
		config:  cfg,
		profile: profile,
		logger:  logger,
	}

	if g.Embedded {
		env.channel = channel.NewLocalChannel(logger)
		env.backend = runtime.NewContainerBackend(env.channel, runtime.ContainerBackendOptions{
			SupervisorAvailable: runtime.DetectSupervisor(),
		}, logger)
	} else {
		containerName := profile.QualifyName(runtime.DefaultContainerName)
		env.channel = newDockerChannel(containerName, logger)
		env.backend = runtime.NewHostBackend(env.channel, runtime.HostBackendOptions{}, logger)
	}

	return env, nil
}

func (e *cliEnv) containerName() string {
	return e.profile.QualifyName(runtime.DefaultContainerName)
}

type statusCommand struct {
	global *globalOptions
}

func (c *statusCommand) Execute(args []string) error {
	env, err := c.global.buildEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()

	snapshot := runtime.CollectStatus(ctx, env.backend, true, env.config.BindAddress, env.config.ServicePort, env.logger)

	fmt.Printf("Broker:          %s\n", snapshot.BrokerHealth.Label())
	if snapshot.ServiceHealth != nil {
		fmt.Printf("Service:         %s\n", snapshot.ServiceHealth.Label())
	}
	fmt.Printf("Service version: %s\n", snapshot.ServiceVersion)
	fmt.Printf("Service commit:  %s\n", snapshot.ServiceCommit)
	fmt.Printf("Image version:   %s\n", snapshot.ImageVersion)

	if env.config.IsNetworkExposed() {
		fmt.Printf("Bind address:    %s (network exposed)\n", env.config.BindAddress)
	} else {
		fmt.Printf("Bind address:    %s\n", env.config.BindAddress)
	}

	if !c.global.Embedded {
		printMountsDriftLine(ctx, env)
		printAssetDriftWarnings(ctx, env)
	}

	return nil
}

func printMountsDriftLine(ctx context.Context, env *cliEnv) {
	observed, err := listBindMounts(ctx, channel.NewLocalChannel(env.logger), env.containerName())
	if err != nil {
		env.logger.Debugf("Skipping mount drift check: %v", err)
		return
	}
	reconciliation := mounts.ReconcileSpecs(env.config.Mounts, observed)
	if reconciliation.InSync {
		fmt.Printf("Mounts:          in sync (%d declared)\n", len(reconciliation.Statuses))
	} else {
		fmt.Printf("Mounts:          DRIFT detected, run 'sandboxcli mounts' for details\n")
	}
}

func printAssetDriftWarnings(ctx context.Context, env *cliEnv) {
	running, err := containerRunning(ctx, channel.NewLocalChannel(env.logger), env.containerName())
	if err != nil || !running {
		return
	}
	report := drift.Detect(ctx, env.channel, env.logger)
	for _, line := range drift.WarningLines(report) {
		fmt.Printf("Warning: %s\n", line)
	}
	for _, diag := range report.Diagnostics {
		env.logger.Debugf("Asset drift diagnostic: %s", diag)
	}
}

type mountsCommand struct {
	global *globalOptions
}

func (c *mountsCommand) Execute(args []string) error {
	env, err := c.global.buildEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()

	observed, err := listBindMounts(ctx, channel.NewLocalChannel(env.logger), env.containerName())
	if err != nil {
		return err
	}

	reconciliation := mounts.ReconcileSpecs(env.config.Mounts, observed)

	for _, status := range reconciliation.Statuses {
		marker := "ok"
		if !status.Matched {
			marker = "MISSING"
		}
		fmt.Printf("  [%s] %s\n", marker, status.Mount.Display())
	}
	for _, dup := range reconciliation.Duplicates {
		fmt.Printf("  [shadowed] %s overrides earlier declaration for %s\n", dup.Kept.Display(), dup.ContainerPath)
	}
	for _, skipped := range reconciliation.Skipped {
		fmt.Printf("  [invalid] %q: %s\n", skipped.Spec, skipped.Reason)
	}
	if reconciliation.Unexpected > 0 {
		fmt.Printf("  [undeclared] %d live mount(s) with no declared counterpart\n", reconciliation.Unexpected)
	}

	if reconciliation.InSync {
		fmt.Println("Mounts are in sync.")
	} else {
		fmt.Println("Mounts have drifted from the declared configuration.")
	}
	return nil
}

type doctorCommand struct {
	global *globalOptions

	SocketPath string `long:"broker-socket" description:"broker control socket path"`
}

func (c *doctorCommand) Execute(args []string) error {
	env, err := c.global.buildEnv()
	if err != nil {
		return err
	}
	ctx := context.Background()

	warnings, err := config.ValidateConfig(env.config)
	if err != nil {
		fmt.Printf("Config:        INVALID: %v\n", err)
	} else {
		fmt.Printf("Config:        ok\n")
		for _, w := range warnings {
			fmt.Printf("  warning (%s): %s, fix: %s\n", w.Field, w.Message, w.FixCommand)
		}
	}

	brokerHealth := runtime.ProbeBrokerHealth(ctx, env.backend, env.logger)
	fmt.Printf("Broker:        %s\n", brokerHealth.Label())

	capabilities := env.backend.Capabilities()
	fmt.Printf("Supervisor:    %s\n", formatCapability(capabilities.SupervisorAvailable))
	fmt.Printf("Diagnostics:   %s\n", formatCapability(capabilities.DiagnosticsAvailable))

	if runtime.BrokerReady(brokerHealth) {
		socketPath := c.SocketPath
		if socketPath == "" {
			socketPath = runtime.DefaultBrokerSocketPath
		}
		if err := probes.CheckControlSocket(ctx, socketPath, 5*time.Second, env.logger); err != nil {
			fmt.Printf("Control probe: FAILED: %v\n", err)
		} else {
			fmt.Printf("Control probe: ok\n")
		}
	} else {
		fmt.Printf("Control probe: skipped (broker not healthy)\n")
	}

	return nil
}

func formatCapability(value *bool) string {
	if value == nil {
		return runtime.UnknownValue
	}
	if *value {
		return "yes"
	}
	return "no"
}

type instanceCommand struct {
	global *globalOptions
}

func (c *instanceCommand) Execute(args []string) error {
	env, err := c.global.buildEnv()
	if err != nil {
		return err
	}

	if env.profile.IsShared() {
		fmt.Println("Instance:  shared (no namespace suffix)")
	} else {
		fmt.Printf("Instance:  %s\n", env.profile.ID)
		fmt.Printf("Suffix:    %s\n", env.profile.Suffix)
	}
	fmt.Printf("Container: %s\n", env.containerName())
	return nil
}

func main() {
	var global globalOptions

	parser := flags.NewParser(&global, flags.HelpFlag|flags.PassDoubleDash)
	parser.AddCommand("status", "Show sandbox status",
		"Probe the sandbox service and broker and print a status snapshot.",
		&statusCommand{global: &global})
	parser.AddCommand("mounts", "Reconcile declared mounts",
		"Compare declared mounts against the live sandbox bind mounts.",
		&mountsCommand{global: &global})
	parser.AddCommand("doctor", "Run deep diagnostics",
		"Validate configuration and run broker control-socket diagnostics.",
		&doctorCommand{global: &global})
	parser.AddCommand("instance", "Show instance namespacing",
		"Print the resolved instance profile and derived resource names.",
		&instanceCommand{global: &global})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
