/*
Package broadcast contains the room-based real-time broadcast core.

This file defines the Registry, which maps opaque connection identifiers to live
outbound channels. The registry exclusively owns each connection's delivery
capability; every other component holds only the identifier.
*/
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
	"chatter/internal/pkg/randx"
)

// DefaultDeliveryTimeout bounds a single outbound delivery when the caller's
// context carries no deadline of its own.
const DefaultDeliveryTimeout = 5 * time.Second

// Channel is the transport-agnostic outbound delivery capability bound to one
// connection. Implementations must be safe for concurrent use.
type Channel interface {
	// Deliver hands the payload to the connection's transport. It returns an
	// error if the transport rejects the payload or the context expires first.
	Deliver(ctx context.Context, payload []byte) error
}

// Registry maps connection identifiers to their live outbound channels.
// Its synchronization is independent of any room lock.
type Registry struct {
	// mu protects concurrent access to the channels map.
	mu sync.RWMutex

	// channels stores the live channel bound to each connection identifier.
	channels map[string]Channel

	// deliveryTimeout bounds each Send when the caller supplies no deadline.
	deliveryTimeout time.Duration

	// structured logger with Registry context.
	logger zerolog.Logger
}

// NewRegistry constructs a Registry. A non-positive deliveryTimeout falls back
// to DefaultDeliveryTimeout.
func NewRegistry(deliveryTimeout time.Duration) *Registry {
	if deliveryTimeout <= 0 {
		deliveryTimeout = DefaultDeliveryTimeout
	}

	return &Registry{
		channels:        make(map[string]Channel),
		deliveryTimeout: deliveryTimeout,
		logger:          logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// Register allocates a fresh connection identifier and binds it to the supplied
// outbound channel. It always succeeds.
func (r *Registry) Register(ch Channel) string {
	connID := randx.ConnectionID()

	r.mu.Lock()
	r.channels[connID] = ch
	r.mu.Unlock()

	r.logger.Info().Str("connection_id", connID).Msg("Connection registered.")
	return connID
}

// Unregister removes the binding for the given identifier.
// It is idempotent: unregistering an absent identifier is a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	_, existed := r.channels[connID]
	delete(r.channels, connID)
	r.mu.Unlock()

	if existed {
		r.logger.Info().Str("connection_id", connID).Msg("Connection unregistered.")
	}
}

// Send delivers the payload to the channel bound to connID, bounded by the
// registry's delivery timeout. It fails with ErrUnknownConnection if the
// identifier is not registered and ErrDeliveryFailed if the transport reports
// an error.
func (r *Registry) Send(ctx context.Context, connID string, payload []byte) error {
	r.mu.RLock()
	ch, ok := r.channels[connID]
	r.mu.RUnlock()

	if !ok {
		return errs.NewError(errs.ErrUnknownConnection, connID)
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.deliveryTimeout)
	defer cancel()

	if err := ch.Deliver(sendCtx, payload); err != nil {
		return errs.Wrap(errs.ErrDeliveryFailed, err, connID)
	}

	return nil
}

// Count returns the number of currently registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.channels)
}
