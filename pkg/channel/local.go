package channel

import (
	"context"
	"os"
	"os/exec"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
)

// localChannel executes commands directly in the current environment. It is
// the channel used by the embedded backend, which runs inside the sandbox.
type localChannel struct {
	logger logging.Logger
}

// NewLocalChannel creates a channel that executes commands locally.
func NewLocalChannel(logger logging.Logger) Channel {
	return &localChannel{
		logger: logger,
	}
}

func (c *localChannel) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	if ctx == nil {
		return "", 0, errors.NewValidationError("context cannot be nil", nil).WithContext("command", name)
	}

	c.logger.Debugf("Running local command, name: %s, args: %v", name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		// A killed-on-deadline process also surfaces as an ExitError, so the
		// context check has to come first.
		if ctx.Err() == context.DeadlineExceeded {
			return "", 0, errors.NewTimeoutError("local command timed out", err).WithContext("command", name)
		}
		if ctx.Err() == context.Canceled {
			return "", 0, errors.NewCancelledError("local command cancelled", err).WithContext("command", name)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			// The command ran and reported failure; that is a result, not a
			// channel error.
			return string(output), exitErr.ExitCode(), nil
		}
		return "", 0, errors.NewExecError("failed to execute local command", err).WithContext("command", name)
	}

	return string(output), 0, nil
}

func (c *localChannel) ReadFile(ctx context.Context, path string) (string, error) {
	if ctx == nil {
		return "", errors.NewValidationError("context cannot be nil", nil).WithContext("path", path)
	}

	c.logger.Debugf("Reading local file, path: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("file does not exist", err).WithContext("path", path)
		}
		return "", errors.NewIOError("failed to read file", err).WithContext("path", path)
	}

	return string(data), nil
}
