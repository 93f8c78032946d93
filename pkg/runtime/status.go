package runtime

import (
	"context"

	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/probes"
)

// ProbeBrokerHealth issues both broker sub-probes and classifies the pair.
// Both probes always run; if either errors the result is CheckFailed
// regardless of the other signal, so a half-broken probe path never reads as
// a healthy broker.
func ProbeBrokerHealth(ctx context.Context, backend Backend, logger logging.Logger) BrokerHealth {
	processActive, processErr := backend.ProbeBrokerProcessActive(ctx)
	socketPresent, socketErr := backend.ProbeBrokerSocketPresent(ctx)

	if processErr != nil || socketErr != nil {
		if processErr != nil {
			logger.Warnf("Broker process probe failed: %v", processErr)
		}
		if socketErr != nil {
			logger.Warnf("Broker socket probe failed: %v", socketErr)
		}
		return BrokerCheckFailed
	}

	return ClassifyBrokerHealth(processActive, socketPresent)
}

// BrokerReady reports whether the broker is fully operational.
func BrokerReady(status BrokerHealth) bool {
	return status == BrokerHealthy
}

// CollectStatus drives the backend through its probes and assembles one
// status snapshot. Probes run sequentially: the underlying channel is one
// exec session and one HTTP client, neither assumed safe for concurrent
// reuse. Every per-probe failure is downgraded into the snapshot — a status
// request always produces a snapshot. No retries, no caching.
//
// The service probe is gated by includeServiceProbe because it may cross a
// network boundary to a remote host; the broker probes are always issued.
func CollectStatus(ctx context.Context, backend Backend, includeServiceProbe bool, bindAddr string, port int, logger logging.Logger) StatusSnapshot {
	var serviceHealth *ServiceHealth
	if includeServiceProbe {
		probe, err := backend.ProbeServiceHTTPHealth(ctx, bindAddr, port)
		if err != nil {
			logger.Warnf("Service HTTP probe failed: %v", err)
			probe = probes.HTTPProbeResult{Outcome: probes.HTTPProbeFailed}
		}
		health := ClassifyServiceHealth(probe)
		serviceHealth = &health
	}

	brokerHealth := ProbeBrokerHealth(ctx, backend, logger)

	return StatusSnapshot{
		ServiceHealth:  serviceHealth,
		BrokerHealth:   brokerHealth,
		ServiceVersion: readMetadata(ctx, backend.ReadServiceVersion, "service version", logger),
		ServiceCommit:  readMetadata(ctx, backend.ReadServiceCommit, "service commit", logger),
		ImageVersion:   readMetadata(ctx, backend.ReadImageVersion, "image version", logger),
		Capabilities:   backend.Capabilities(),
	}
}

// readMetadata downgrades both absence and read failure to the unknown
// sentinel, keeping one broken field from poisoning the snapshot.
func readMetadata(ctx context.Context, read func(context.Context) (string, bool, error), what string, logger logging.Logger) string {
	value, ok, err := read(ctx)
	if err != nil {
		logger.Warnf("Failed to read %s: %v", what, err)
		return UnknownValue
	}
	if !ok {
		return UnknownValue
	}
	return value
}
