package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorTypeChecks(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		checker func(error) bool
	}{
		{name: "parse", err: NewParseError("bad spec", nil), checker: IsParseError},
		{name: "validation", err: NewValidationError("bad value", nil), checker: IsValidationError},
		{name: "probe", err: NewProbeError("probe broke", nil), checker: IsProbeError},
		{name: "exec", err: NewExecError("exec broke", nil), checker: IsExecError},
		{name: "network", err: NewNetworkError("network broke", nil), checker: IsNetworkError},
		{name: "io", err: NewIOError("io broke", nil), checker: IsIOError},
		{name: "not_found", err: NewNotFoundError("missing", nil), checker: IsNotFoundError},
		{name: "conflict", err: NewConflictError("conflict", nil), checker: IsConflictError},
		{name: "timeout", err: NewTimeoutError("too slow", nil), checker: IsTimeoutError},
		{name: "internal", err: NewInternalError("broken invariant", nil), checker: IsInternalError},
		{name: "cancelled", err: NewCancelledError("cancelled", nil), checker: IsCancelledError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.checker(tt.err))
			// No other checker may claim it.
			for _, other := range tests {
				if other.name != tt.name {
					assert.False(t, other.checker(tt.err), "%s checker claimed %s error", other.name, tt.name)
				}
			}
		})
	}
}

func TestDomainErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("underlying failure")
	err := NewIOError("failed to read file", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to read file")
	assert.Contains(t, err.Error(), "underlying failure")
}

func TestTypeCheckSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer context: %w", NewValidationError("inner", nil))

	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(stderrors.New("plain")))
	assert.False(t, IsValidationError(nil))
}

func TestWithContext(t *testing.T) {
	err := NewProbeError("probe failed", nil).
		WithContext("host", "127.0.0.1").
		WithContext("port", 3000)

	require.NotNil(t, err.Context)
	assert.Equal(t, "127.0.0.1", err.Context["host"])
	assert.Equal(t, 3000, err.Context["port"])
}

func TestErrorCollection(t *testing.T) {
	collection := NewErrorCollection()
	assert.False(t, collection.HasErrors())
	assert.NoError(t, collection.ToError())

	collection.Add(nil) // ignored
	assert.False(t, collection.HasErrors())

	collection.Add(NewIOError("first", nil))
	collection.Add(NewIOError("second", nil))

	assert.True(t, collection.HasErrors())
	require.Error(t, collection.ToError())
	assert.Len(t, collection.Errors, 2)
	assert.Contains(t, collection.Error(), "2 errors occurred")
	assert.Contains(t, collection.Error(), "first")
}
