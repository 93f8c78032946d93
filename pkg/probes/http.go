package probes

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/core-tools/hsu-sandbox/pkg/logging"
)

// HTTPProbeOutcome is the raw classification of one bounded HTTP health probe.
type HTTPProbeOutcome string

const (
	// HTTPProbeHealthy means the endpoint answered with a 2xx status.
	HTTPProbeHealthy HTTPProbeOutcome = "healthy"
	// HTTPProbeConnectionRefused means nothing is listening yet. During
	// service startup this is expected, not exceptional.
	HTTPProbeConnectionRefused HTTPProbeOutcome = "connection_refused"
	// HTTPProbeTimeout means the endpoint did not answer within the budget.
	HTTPProbeTimeout HTTPProbeOutcome = "timeout"
	// HTTPProbeUnhealthy means the endpoint answered with a non-2xx status.
	HTTPProbeUnhealthy HTTPProbeOutcome = "unhealthy"
	// HTTPProbeFailed means the probe mechanism itself broke, as opposed to a
	// negative-but-valid health signal.
	HTTPProbeFailed HTTPProbeOutcome = "failed"
)

// HTTPProbeResult is the outcome of one HTTP health probe. StatusCode is set
// only for HTTPProbeUnhealthy.
type HTTPProbeResult struct {
	Outcome    HTTPProbeOutcome
	StatusCode int
}

// HTTPProbeOptions configures one HTTP health probe.
type HTTPProbeOptions struct {
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Path    string        `yaml:"path,omitempty"`
}

// DefaultHTTPProbeOptions returns the default probe budget and path.
func DefaultHTTPProbeOptions() HTTPProbeOptions {
	return HTTPProbeOptions{
		Timeout: 2 * time.Second,
		Path:    "/",
	}
}

// CheckHTTP performs one bounded HTTP GET health probe and classifies the
// outcome. It never returns an error: every failure mode is a result value.
func CheckHTTP(ctx context.Context, host string, port int, options HTTPProbeOptions, logger logging.Logger) HTTPProbeResult {
	if options.Timeout <= 0 {
		options.Timeout = DefaultHTTPProbeOptions().Timeout
	}
	if options.Path == "" {
		options.Path = "/"
	}

	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(host, fmt.Sprintf("%d", port)), options.Path)

	logger.Debugf("Performing HTTP health probe, url: %s, timeout: %v", url, options.Timeout)

	client := &http.Client{
		Timeout: options.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Errorf("Failed to create HTTP probe request, url: %s, error: %v", url, err)
		return HTTPProbeResult{Outcome: HTTPProbeFailed}
	}

	resp, err := client.Do(req)
	if err != nil {
		outcome := classifyHTTPProbeError(err)
		logger.Debugf("HTTP health probe did not succeed, url: %s, outcome: %s, error: %v", url, outcome, err)
		return HTTPProbeResult{Outcome: outcome}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Debugf("HTTP health probe passed, url: %s, status: %d", url, resp.StatusCode)
		return HTTPProbeResult{Outcome: HTTPProbeHealthy}
	}

	logger.Debugf("HTTP health probe unhealthy, url: %s, status: %d", url, resp.StatusCode)
	return HTTPProbeResult{Outcome: HTTPProbeUnhealthy, StatusCode: resp.StatusCode}
}

// classifyHTTPProbeError distinguishes connection-refused and timeout from
// real probe breakage.
func classifyHTTPProbeError(err error) HTTPProbeOutcome {
	if stderrors.Is(err, syscall.ECONNREFUSED) {
		return HTTPProbeConnectionRefused
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return HTTPProbeTimeout
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return HTTPProbeTimeout
	}

	return HTTPProbeFailed
}

// NormalizeBindAddr converts a listen address into an address a probe can
// actually dial. Wildcard binds are reachable on loopback.
func NormalizeBindAddr(bindAddr string) string {
	switch bindAddr {
	case "", "0.0.0.0":
		return "127.0.0.1"
	case "::":
		return "::1"
	default:
		return bindAddr
	}
}
