package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatter/internal/pkg/errs"
)

func TestRegistryRegisterAndSend(t *testing.T) {
	registry := NewRegistry(time.Second)

	ch := &captureChannel{}
	connID := registry.Register(ch)
	require.NotEmpty(t, connID)
	assert.Equal(t, 1, registry.Count())

	err := registry.Send(context.Background(), connID, []byte(`{"event":"ping"}`))
	require.NoError(t, err)

	frames := ch.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, `{"event":"ping"}`, string(frames[0]))
}

func TestRegistryAssignsUniqueIdentifiers(t *testing.T) {
	registry := NewRegistry(time.Second)

	seen := make(map[string]struct{})
	for n := 0; n < 100; n++ {
		connID := registry.Register(&captureChannel{})
		_, dup := seen[connID]
		require.False(t, dup, "connection id %q issued twice", connID)
		seen[connID] = struct{}{}
	}
}

func TestRegistrySendUnknownConnection(t *testing.T) {
	registry := NewRegistry(time.Second)

	err := registry.Send(context.Background(), "missing", []byte("x"))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrUnknownConnection))
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry(time.Second)

	connID := registry.Register(&captureChannel{})
	registry.Unregister(connID)
	registry.Unregister(connID)
	assert.Equal(t, 0, registry.Count())

	err := registry.Send(context.Background(), connID, []byte("x"))
	assert.True(t, errs.HasCode(err, errs.ErrUnknownConnection))
}

func TestRegistrySendWrapsTransportError(t *testing.T) {
	registry := NewRegistry(time.Second)

	cause := errors.New("socket closed")
	connID := registry.Register(&captureChannel{fail: cause})

	err := registry.Send(context.Background(), connID, []byte("x"))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrDeliveryFailed))
	assert.ErrorIs(t, err, cause)
}

func TestRegistrySendTimesOutBlockedChannel(t *testing.T) {
	registry := NewRegistry(50 * time.Millisecond)

	connID := registry.Register(&captureChannel{block: true})

	start := time.Now()
	err := registry.Send(context.Background(), connID, []byte("x"))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrDeliveryFailed))
	assert.Less(t, elapsed, time.Second, "send should be bounded by the delivery timeout")
}
