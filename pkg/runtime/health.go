package runtime

import (
	"github.com/core-tools/hsu-sandbox/pkg/probes"
)

// ClassifyServiceHealth maps a raw HTTP probe outcome to the normalized
// service health. Connection-refused and timeout both collapse to Starting:
// the distinction is not actionable to the user.
func ClassifyServiceHealth(probe probes.HTTPProbeResult) ServiceHealth {
	switch probe.Outcome {
	case probes.HTTPProbeHealthy:
		return ServiceHealth{State: ServiceHealthy}
	case probes.HTTPProbeConnectionRefused, probes.HTTPProbeTimeout:
		return ServiceHealth{State: ServiceStarting}
	case probes.HTTPProbeUnhealthy:
		return ServiceHealth{State: ServiceUnhealthy, StatusCode: probe.StatusCode}
	default:
		return ServiceHealth{State: ServiceCheckFailed}
	}
}

// ClassifyBrokerHealth maps the broker signal pair to the normalized broker
// health: both true is Healthy, both false is Unhealthy, exactly one true is
// Degraded.
func ClassifyBrokerHealth(processActive, socketPresent bool) BrokerHealth {
	switch {
	case processActive && socketPresent:
		return BrokerHealthy
	case !processActive && !socketPresent:
		return BrokerUnhealthy
	default:
		return BrokerDegraded
	}
}
