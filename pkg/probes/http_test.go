package probes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/core-tools/hsu-sandbox/pkg/logging"

	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeLogger() logging.Logger {
	return logging.NewLogger("test , ", logging.LogFuncs{})
}

func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return port
}

func TestCheckHTTPHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := CheckHTTP(context.Background(), "127.0.0.1", serverPort(t, server), DefaultHTTPProbeOptions(), probeLogger())

	assert.Equal(t, HTTPProbeHealthy, result.Outcome)
	assert.Zero(t, result.StatusCode)
}

func TestCheckHTTPUnhealthyKeepsStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result := CheckHTTP(context.Background(), "127.0.0.1", serverPort(t, server), DefaultHTTPProbeOptions(), probeLogger())

	assert.Equal(t, HTTPProbeUnhealthy, result.Outcome)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
}

func TestCheckHTTPConnectionRefused(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	result := CheckHTTP(context.Background(), "127.0.0.1", port, DefaultHTTPProbeOptions(), probeLogger())

	assert.Equal(t, HTTPProbeConnectionRefused, result.Outcome)
}

func TestCheckHTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	options := HTTPProbeOptions{Timeout: 50 * time.Millisecond, Path: "/"}
	result := CheckHTTP(context.Background(), "127.0.0.1", serverPort(t, server), options, probeLogger())

	assert.Equal(t, HTTPProbeTimeout, result.Outcome)
}

func TestCheckHTTPCustomPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	options := HTTPProbeOptions{Timeout: 2 * time.Second, Path: "/healthz"}
	result := CheckHTTP(context.Background(), "127.0.0.1", serverPort(t, server), options, probeLogger())

	assert.Equal(t, HTTPProbeHealthy, result.Outcome)
}

func TestNormalizeBindAddr(t *testing.T) {
	tests := []struct {
		bindAddr string
		expected string
	}{
		{bindAddr: "", expected: "127.0.0.1"},
		{bindAddr: "0.0.0.0", expected: "127.0.0.1"},
		{bindAddr: "::", expected: "::1"},
		{bindAddr: "localhost", expected: "localhost"},
		{bindAddr: "127.0.0.1", expected: "127.0.0.1"},
		{bindAddr: "192.168.1.10", expected: "192.168.1.10"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeBindAddr(tt.bindAddr), "bindAddr=%q", tt.bindAddr)
	}
}
