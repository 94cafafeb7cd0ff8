/*
Package broadcast contains the room-based real-time broadcast core.

This file defines the Group fan-out primitive: a named set of connection
identifiers per room with best-effort, concurrent per-recipient delivery.
The Group holds only identifiers; the Registry owns the channels behind them.
*/
package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"chatter/internal/pkg/logx"
)

// DeliveryFailure records one recipient that a fan-out could not reach.
type DeliveryFailure struct {
	ConnectionID string
	Err          error
}

// DeliveryError aggregates the per-recipient failures of a single fan-out.
// A fan-out that reaches some recipients and misses others still returns this
// error while the successful deliveries stand.
type DeliveryError struct {
	Room     string
	Failures []DeliveryFailure
}

// Error implements the standard Go error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("broadcast to room %q failed for %d recipient(s)", e.Room, len(e.Failures))
}

// Group maps a room slug to its current fan-out set of connection identifiers.
type Group struct {
	// mu protects concurrent access to the rooms map.
	mu sync.RWMutex

	// rooms maps a room slug to the set of connection identifiers receiving its
	// broadcasts. Entries are created on first reference and deleted when empty.
	rooms map[string]map[string]struct{}

	// registry resolves connection identifiers to live channels during Send.
	registry *Registry

	// structured logger with Group context.
	logger zerolog.Logger
}

// NewGroup constructs a Group that delivers through the given registry.
func NewGroup(registry *Registry) *Group {
	return &Group{
		rooms:    make(map[string]map[string]struct{}),
		registry: registry,
		logger:   logx.Logger().With().Str("component", "Group").Logger(),
	}
}

// Add inserts the connection identifier into the room's fan-out set.
// Idempotent: re-adding a present identifier is a no-op.
func (g *Group) Add(room, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.rooms[room]
	if !ok {
		set = make(map[string]struct{})
		g.rooms[room] = set
	}
	set[connID] = struct{}{}
}

// Discard removes the connection identifier from the room's fan-out set if
// present. Idempotent: it never errors on absence.
func (g *Group) Discard(room, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.rooms[room]
	if !ok {
		return
	}

	delete(set, connID)
	if len(set) == 0 {
		delete(g.rooms, room)
	}
}

// Contains reports whether the connection identifier is in the room's fan-out set.
func (g *Group) Contains(room, connID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	set, ok := g.rooms[room]
	if !ok {
		return false
	}

	_, present := set[connID]
	return present
}

// Size returns the number of connections in the room's fan-out set.
func (g *Group) Size(room string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.rooms[room])
}

// Send delivers the payload to every connection currently in the room's set.
// Recipients are served concurrently, each bounded by the registry's delivery
// timeout; one failing or slow recipient never blocks the rest. Failures are
// collected and returned as a single *DeliveryError, nil when all deliveries
// succeed.
func (g *Group) Send(ctx context.Context, room string, payload []byte) error {
	g.mu.RLock()
	recipients := make([]string, 0, len(g.rooms[room]))
	for connID := range g.rooms[room] {
		recipients = append(recipients, connID)
	}
	g.mu.RUnlock()

	if len(recipients) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		failMu   sync.Mutex
		failures []DeliveryFailure
	)

	for _, connID := range recipients {
		wg.Add(1)

		go func(connID string) {
			defer wg.Done()

			if err := g.registry.Send(ctx, connID, payload); err != nil {
				failMu.Lock()
				failures = append(failures, DeliveryFailure{ConnectionID: connID, Err: err})
				failMu.Unlock()
			}
		}(connID)
	}

	wg.Wait()

	if len(failures) == 0 {
		return nil
	}

	g.logger.Warn().
		Str("room", room).
		Int("recipients", len(recipients)).
		Int("failed", len(failures)).
		Msg("Fan-out completed with delivery failures.")

	return &DeliveryError{Room: room, Failures: failures}
}
