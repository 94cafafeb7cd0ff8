package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupAddAndDiscardAreIdempotent(t *testing.T) {
	registry := NewRegistry(time.Second)
	group := NewGroup(registry)

	group.Add("lobby", "conn-1")
	group.Add("lobby", "conn-1")
	assert.Equal(t, 1, group.Size("lobby"))
	assert.True(t, group.Contains("lobby", "conn-1"))

	group.Discard("lobby", "conn-1")
	group.Discard("lobby", "conn-1")
	group.Discard("ghost", "conn-1")
	assert.Equal(t, 0, group.Size("lobby"))
	assert.False(t, group.Contains("lobby", "conn-1"))
}

func TestGroupSendFansOutToAllMembers(t *testing.T) {
	registry := NewRegistry(time.Second)
	group := NewGroup(registry)

	ch1 := &captureChannel{}
	ch2 := &captureChannel{}
	group.Add("lobby", registry.Register(ch1))
	group.Add("lobby", registry.Register(ch2))

	err := group.Send(context.Background(), "lobby", []byte("hello"))
	require.NoError(t, err)

	require.Len(t, ch1.Frames(), 1)
	require.Len(t, ch2.Frames(), 1)
	assert.Equal(t, "hello", string(ch1.Frames()[0]))
}

func TestGroupSendToEmptyRoom(t *testing.T) {
	registry := NewRegistry(time.Second)
	group := NewGroup(registry)

	assert.NoError(t, group.Send(context.Background(), "empty", []byte("hello")))
}

func TestGroupSendIsolatesRecipientFailures(t *testing.T) {
	registry := NewRegistry(time.Second)
	group := NewGroup(registry)

	healthy := &captureChannel{}
	broken := &captureChannel{fail: errors.New("socket closed")}

	healthyID := registry.Register(healthy)
	brokenID := registry.Register(broken)
	group.Add("lobby", healthyID)
	group.Add("lobby", brokenID)

	err := group.Send(context.Background(), "lobby", []byte("hello"))
	require.Error(t, err)

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, "lobby", deliveryErr.Room)
	require.Len(t, deliveryErr.Failures, 1)
	assert.Equal(t, brokenID, deliveryErr.Failures[0].ConnectionID)

	require.Len(t, healthy.Frames(), 1, "failure of one recipient must not abort delivery to the rest")
}

func TestGroupSendSlowRecipientDoesNotStarveOthers(t *testing.T) {
	registry := NewRegistry(100 * time.Millisecond)
	group := NewGroup(registry)

	fast := &captureChannel{}
	slow := &captureChannel{block: true}

	fastID := registry.Register(fast)
	group.Add("lobby", fastID)
	group.Add("lobby", registry.Register(slow))

	start := time.Now()
	err := group.Send(context.Background(), "lobby", []byte("hello"))
	elapsed := time.Since(start)

	require.Error(t, err)
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	require.Len(t, deliveryErr.Failures, 1)
	assert.NotEqual(t, fastID, deliveryErr.Failures[0].ConnectionID)

	require.Len(t, fast.Frames(), 1)
	assert.Less(t, elapsed, time.Second, "fan-out must be bounded by the delivery timeout")
}
