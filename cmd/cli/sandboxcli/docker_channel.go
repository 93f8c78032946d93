package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/core-tools/hsu-sandbox/pkg/channel"
	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/mounts"
)

// dockerChannel runs commands inside a sandbox container through the local
// docker CLI. It satisfies channel.Channel so the backend and drift packages
// stay unaware of how commands reach the sandbox.
type dockerChannel struct {
	containerName string
	runner        channel.Channel
	logger        logging.Logger
}

func newDockerChannel(containerName string, logger logging.Logger) channel.Channel {
	return &dockerChannel{
		containerName: containerName,
		runner:        channel.NewLocalChannel(logger),
		logger:        logger,
	}
}

func (c *dockerChannel) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	dockerArgs := append([]string{"exec", c.containerName, name}, args...)
	return c.runner.Run(ctx, "docker", dockerArgs...)
}

func (c *dockerChannel) ReadFile(ctx context.Context, path string) (string, error) {
	output, exitCode, err := c.Run(ctx, "cat", path)
	if err != nil {
		return "", err
	}
	if exitCode != 0 {
		return "", errors.NewNotFoundError(
			fmt.Sprintf("failed to read %q in container", path), nil,
		).WithContext("container", c.containerName).WithContext("exit_code", exitCode)
	}
	return output, nil
}

// containerRunning reports whether the named container exists and is running.
// A missing container is a plain false, not an error.
func containerRunning(ctx context.Context, runner channel.Channel, containerName string) (bool, error) {
	output, exitCode, err := runner.Run(ctx, "docker", "inspect", "--format", "{{.State.Running}}", containerName)
	if err != nil {
		return false, err
	}
	if exitCode != 0 {
		return false, nil
	}
	return strings.TrimSpace(output) == "true", nil
}

// inspectMountsFormat emits one "source|target|rw" line per bind mount.
const inspectMountsFormat = `{{range .Mounts}}{{if eq .Type "bind"}}{{.Source}}|{{.Destination}}|{{.RW}}
{{end}}{{end}}`

// listBindMounts reads the container's live bind mounts via docker inspect.
func listBindMounts(ctx context.Context, runner channel.Channel, containerName string) ([]mounts.ObservedMount, error) {
	output, exitCode, err := runner.Run(ctx, "docker", "inspect", "--format", inspectMountsFormat, containerName)
	if err != nil {
		return nil, err
	}
	if exitCode != 0 {
		return nil, errors.NewNotFoundError("container not found", nil).
			WithContext("container", containerName).
			WithContext("output", strings.TrimSpace(output))
	}

	var observed []mounts.ObservedMount
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			return nil, errors.NewParseError(
				fmt.Sprintf("unexpected mount inspect line %q", line), nil,
			).WithContext("container", containerName)
		}
		observed = append(observed, mounts.ObservedMount{
			Source:   parts[0],
			Target:   parts[1],
			ReadOnly: parts[2] != "true",
		})
	}
	return observed, nil
}
