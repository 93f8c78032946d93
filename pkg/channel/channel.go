package channel

import "context"

// Channel is the out-of-band command channel into the sandbox environment.
//
// Run executes a command and returns its merged stdout/stderr output and exit
// code. A non-zero exit code is a valid outcome, not an error: the returned
// error is reserved for failures of the channel itself (the command could not
// be dispatched at all). ReadFile reads a file reachable through the channel.
type Channel interface {
	Run(ctx context.Context, name string, args ...string) (output string, exitCode int, err error)
	ReadFile(ctx context.Context, path string) (string, error)
}

// RunShell dispatches a shell snippet through the channel. Probes that need
// shell conditionals (unit-or-process fallbacks, socket type tests) go through
// here so both channel flavors see an identical command shape.
func RunShell(ctx context.Context, ch Channel, script string) (string, int, error) {
	return ch.Run(ctx, "sh", "-lc", script)
}
