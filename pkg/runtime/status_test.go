package runtime

import (
	"context"
	"testing"

	"github.com/core-tools/hsu-sandbox/pkg/errors"
	"github.com/core-tools/hsu-sandbox/pkg/logging"
	"github.com/core-tools/hsu-sandbox/pkg/probes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ProbeServiceHTTPHealth(ctx context.Context, bindAddr string, port int) (probes.HTTPProbeResult, error) {
	args := m.Called(ctx, bindAddr, port)
	return args.Get(0).(probes.HTTPProbeResult), args.Error(1)
}

func (m *mockBackend) ProbeBrokerProcessActive(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockBackend) ProbeBrokerSocketPresent(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockBackend) ReadServiceVersion(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBackend) ReadServiceCommit(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBackend) ReadImageVersion(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockBackend) Capabilities() Capabilities {
	args := m.Called()
	return args.Get(0).(Capabilities)
}

func testLogger() logging.Logger {
	return logging.NewLogger("test , ", logging.LogFuncs{})
}

func newHealthyMockBackend() *mockBackend {
	backend := &mockBackend{}
	backend.On("ProbeServiceHTTPHealth", mock.Anything, mock.Anything, mock.Anything).
		Return(probes.HTTPProbeResult{Outcome: probes.HTTPProbeHealthy}, nil)
	backend.On("ProbeBrokerProcessActive", mock.Anything).Return(true, nil)
	backend.On("ProbeBrokerSocketPresent", mock.Anything).Return(true, nil)
	backend.On("ReadServiceVersion", mock.Anything).Return("1.4.2", true, nil)
	backend.On("ReadServiceCommit", mock.Anything).Return("abc1234", true, nil)
	backend.On("ReadImageVersion", mock.Anything).Return("2026.08.1", true, nil)
	backend.On("Capabilities").Return(Capabilities{})
	return backend
}

func TestCollectStatusHealthy(t *testing.T) {
	backend := newHealthyMockBackend()

	snapshot := CollectStatus(context.Background(), backend, true, "127.0.0.1", 3000, testLogger())

	assert.NotNil(t, snapshot.ServiceHealth)
	assert.Equal(t, ServiceHealthy, snapshot.ServiceHealth.State)
	assert.Equal(t, BrokerHealthy, snapshot.BrokerHealth)
	assert.Equal(t, "1.4.2", snapshot.ServiceVersion)
	assert.Equal(t, "abc1234", snapshot.ServiceCommit)
	assert.Equal(t, "2026.08.1", snapshot.ImageVersion)
}

func TestCollectStatusServiceProbeGating(t *testing.T) {
	backend := newHealthyMockBackend()

	snapshot := CollectStatus(context.Background(), backend, false, "127.0.0.1", 3000, testLogger())

	assert.Nil(t, snapshot.ServiceHealth)
	// Broker probes are issued regardless of the service gate.
	assert.Equal(t, BrokerHealthy, snapshot.BrokerHealth)
	backend.AssertNotCalled(t, "ProbeServiceHTTPHealth", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollectStatusAbsorbsServiceProbeError(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ProbeServiceHTTPHealth", mock.Anything, mock.Anything, mock.Anything).
		Return(probes.HTTPProbeResult{}, errors.NewExecError("channel broke", nil))
	backend.On("ProbeBrokerProcessActive", mock.Anything).Return(true, nil)
	backend.On("ProbeBrokerSocketPresent", mock.Anything).Return(true, nil)
	backend.On("ReadServiceVersion", mock.Anything).Return("", false, nil)
	backend.On("ReadServiceCommit", mock.Anything).Return("", false, nil)
	backend.On("ReadImageVersion", mock.Anything).Return("", false, nil)
	backend.On("Capabilities").Return(Capabilities{})

	snapshot := CollectStatus(context.Background(), backend, true, "127.0.0.1", 3000, testLogger())

	assert.NotNil(t, snapshot.ServiceHealth)
	assert.Equal(t, ServiceCheckFailed, snapshot.ServiceHealth.State)
	// The failing service probe must not suppress the fields that probed fine.
	assert.Equal(t, BrokerHealthy, snapshot.BrokerHealth)
}

func TestCollectStatusUnknownMetadata(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ProbeBrokerProcessActive", mock.Anything).Return(false, nil)
	backend.On("ProbeBrokerSocketPresent", mock.Anything).Return(false, nil)
	backend.On("ReadServiceVersion", mock.Anything).Return("", false, nil)
	backend.On("ReadServiceCommit", mock.Anything).Return("", false, errors.NewIOError("read failed", nil))
	backend.On("ReadImageVersion", mock.Anything).Return("", false, nil)
	backend.On("Capabilities").Return(Capabilities{})

	snapshot := CollectStatus(context.Background(), backend, false, "127.0.0.1", 3000, testLogger())

	// Absence and read failure both collapse to the sentinel.
	assert.Equal(t, UnknownValue, snapshot.ServiceVersion)
	assert.Equal(t, UnknownValue, snapshot.ServiceCommit)
	assert.Equal(t, UnknownValue, snapshot.ImageVersion)
}

func TestProbeBrokerHealthErrorIsCheckFailed(t *testing.T) {
	tests := []struct {
		name       string
		processErr error
		socketErr  error
	}{
		{name: "process_probe_error", processErr: errors.NewExecError("exec failed", nil)},
		{name: "socket_probe_error", socketErr: errors.NewExecError("exec failed", nil)},
		{name: "both_probe_errors", processErr: errors.NewExecError("exec failed", nil), socketErr: errors.NewExecError("exec failed", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{}
			// Positive signals must not mask a probe error.
			backend.On("ProbeBrokerProcessActive", mock.Anything).Return(true, tt.processErr)
			backend.On("ProbeBrokerSocketPresent", mock.Anything).Return(true, tt.socketErr)

			health := ProbeBrokerHealth(context.Background(), backend, testLogger())

			assert.Equal(t, BrokerCheckFailed, health)
			// Both probes are issued even when the first one errors.
			backend.AssertCalled(t, "ProbeBrokerSocketPresent", mock.Anything)
		})
	}
}

func TestBrokerReady(t *testing.T) {
	assert.True(t, BrokerReady(BrokerHealthy))
	assert.False(t, BrokerReady(BrokerDegraded))
	assert.False(t, BrokerReady(BrokerUnhealthy))
	assert.False(t, BrokerReady(BrokerCheckFailed))
}
