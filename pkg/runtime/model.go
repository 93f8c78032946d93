package runtime

import (
	"fmt"
)

// Capabilities describes constraints of one execution context. Each field is
// set only when the backend can actually assert it; the host backend cannot
// introspect the sandbox init system and leaves every field nil.
type Capabilities struct {
	// SupervisorAvailable reports whether a service supervisor manages the
	// broker inside the sandbox.
	SupervisorAvailable *bool
	// DiagnosticsAvailable reports whether supervisor-level log diagnostics
	// can be queried in this context.
	DiagnosticsAvailable *bool
	// RootRequiredForUserManagement reports whether user management
	// operations need root privileges in this context.
	RootRequiredForUserManagement *bool
}

// ServiceHealthState is the normalized health of the sandbox service.
type ServiceHealthState string

const (
	ServiceHealthy     ServiceHealthState = "healthy"
	ServiceStarting    ServiceHealthState = "starting"
	ServiceUnhealthy   ServiceHealthState = "unhealthy"
	ServiceCheckFailed ServiceHealthState = "check_failed"
)

// ServiceHealth is the classified service health. StatusCode is set only for
// ServiceUnhealthy, preserving the HTTP code the probe observed.
type ServiceHealth struct {
	State      ServiceHealthState
	StatusCode int
}

// Label renders the health state for display.
func (h ServiceHealth) Label() string {
	switch h.State {
	case ServiceHealthy:
		return "Healthy"
	case ServiceStarting:
		return "Service starting..."
	case ServiceUnhealthy:
		return fmt.Sprintf("Unhealthy (HTTP %d)", h.StatusCode)
	case ServiceCheckFailed:
		return "Check failed"
	default:
		return string(h.State)
	}
}

// BrokerHealth is the normalized health of the background auth broker.
type BrokerHealth string

const (
	BrokerHealthy     BrokerHealth = "healthy"
	BrokerDegraded    BrokerHealth = "degraded"
	BrokerUnhealthy   BrokerHealth = "unhealthy"
	BrokerCheckFailed BrokerHealth = "check_failed"
)

// Label renders the broker health for display.
func (h BrokerHealth) Label() string {
	switch h {
	case BrokerHealthy:
		return "Healthy"
	case BrokerDegraded:
		return "Degraded"
	case BrokerUnhealthy:
		return "Unhealthy"
	case BrokerCheckFailed:
		return "Check failed"
	default:
		return string(h)
	}
}

// UnknownValue is the sentinel rendered for metadata a backend could not
// provide. An explicit marker keeps "not applicable" distinguishable from
// "attempted and broke".
const UnknownValue = "unknown"

// StatusSnapshot is one immutable status collected through a backend. It is
// built fresh per invocation and never cached or reused.
type StatusSnapshot struct {
	// ServiceHealth is nil when the caller skipped the service probe.
	ServiceHealth  *ServiceHealth
	BrokerHealth   BrokerHealth
	ServiceVersion string
	ServiceCommit  string
	ImageVersion   string
	Capabilities   Capabilities
}
