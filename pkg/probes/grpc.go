package probes

import (
	"context"
	"time"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// CheckControlSocket dials the broker control socket and issues a standard
// gRPC health check. This is a deep diagnostic used by the doctor flow only;
// broker health classification stays on the process/socket signal pair.
func CheckControlSocket(ctx context.Context, socketPath string, timeout time.Duration, logger logging.Logger) error {
	if socketPath == "" {
		return errors.NewValidationError("control socket path cannot be empty", nil)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	logger.Debugf("Probing broker control socket, path: %s, timeout: %v", socketPath, timeout)

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return errors.NewNetworkError("failed to dial broker control socket", err).WithContext("socket_path", socketPath)
	}
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	response, err := client.Check(dialCtx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return errors.NewProbeError("broker control health check failed", err).WithContext("socket_path", socketPath)
	}

	if response.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		return errors.NewProbeError("broker control plane is not serving", nil).
			WithContext("socket_path", socketPath).
			WithContext("status", response.Status.String())
	}

	logger.Debugf("Broker control socket is serving, path: %s", socketPath)
	return nil
}
