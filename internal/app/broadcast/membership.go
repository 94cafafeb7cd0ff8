/*
Package broadcast contains the room-based real-time broadcast core.

This file defines the Membership store, which tracks the ordered set of members
per room. Rooms exist the moment they are referenced ("get-or-create") and their
state is reclaimed when the last member leaves.
*/
package broadcast

import (
	"sync"

	"github.com/rs/zerolog"

	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
)

// Member is one participant of a room: a username paired with the connection
// that carries it. The connection's lifecycle is owned by the Registry, not here.
type Member struct {
	Username     string
	ConnectionID string
}

// roomMembers holds one room's members in insertion order with lookup indexes.
type roomMembers struct {
	ordered []Member
	byConn  map[string]struct{}
	byName  map[string]struct{}
}

func newRoomMembers() *roomMembers {
	return &roomMembers{
		byConn: make(map[string]struct{}),
		byName: make(map[string]struct{}),
	}
}

// removeAt splices the member at index i out of the ordered list and indexes.
func (rm *roomMembers) removeAt(i int) Member {
	member := rm.ordered[i]
	rm.ordered = append(rm.ordered[:i], rm.ordered[i+1:]...)
	delete(rm.byConn, member.ConnectionID)
	delete(rm.byName, member.Username)
	return member
}

// Membership tracks, per room, the insertion-ordered set of members.
// Usernames are unique within a room; connection identifiers are unique globally.
type Membership struct {
	// mu protects concurrent access to the rooms map and its entries.
	mu sync.RWMutex

	// rooms maps a room slug to its member state. Entries are created on first
	// reference and deleted when the last member leaves.
	rooms map[string]*roomMembers

	// structured logger with Membership context.
	logger zerolog.Logger
}

// NewMembership constructs an empty Membership store.
func NewMembership() *Membership {
	return &Membership{
		rooms:  make(map[string]*roomMembers),
		logger: logx.Logger().With().Str("component", "Membership").Logger(),
	}
}

// Add inserts a member into the room's set, creating the room on first use.
// It fails with ErrDuplicateUsername if the username is already present in that
// room; it never silently overwrites an existing member.
func (m *Membership) Add(room, username, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.rooms[room]
	if !ok {
		rm = newRoomMembers()
		m.rooms[room] = rm
	}

	if _, taken := rm.byName[username]; taken {
		return errs.NewError(errs.ErrDuplicateUsername)
	}

	rm.ordered = append(rm.ordered, Member{Username: username, ConnectionID: connID})
	rm.byConn[connID] = struct{}{}
	rm.byName[username] = struct{}{}

	m.logger.Info().
		Str("room", room).
		Str("username", username).
		Str("connection_id", connID).
		Int("member_count", len(rm.ordered)).
		Msg("Member added.")

	return nil
}

// RemoveByConnection removes and returns the member whose connection identifier
// matches. It fails with ErrMemberNotFound if no member matches.
func (m *Membership) RemoveByConnection(room, connID string) (Member, error) {
	return m.remove(room, func(member Member) bool {
		return member.ConnectionID == connID
	})
}

// RemoveByUsername removes and returns the member whose username matches.
// It fails with ErrMemberNotFound if no member matches.
func (m *Membership) RemoveByUsername(room, username string) (Member, error) {
	return m.remove(room, func(member Member) bool {
		return member.Username == username
	})
}

func (m *Membership) remove(room string, match func(Member) bool) (Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.rooms[room]
	if !ok {
		return Member{}, errs.NewError(errs.ErrMemberNotFound)
	}

	for i, member := range rm.ordered {
		if !match(member) {
			continue
		}

		removed := rm.removeAt(i)

		if len(rm.ordered) == 0 {
			delete(m.rooms, room)
		}

		m.logger.Info().
			Str("room", room).
			Str("username", removed.Username).
			Str("connection_id", removed.ConnectionID).
			Int("member_count", len(rm.ordered)).
			Msg("Member removed.")

		return removed, nil
	}

	return Member{}, errs.NewError(errs.ErrMemberNotFound)
}

// List returns a copy-on-read snapshot of the room's members in insertion order.
// An unknown room yields an empty slice, never an error.
func (m *Membership) List(room string) []Member {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rm, ok := m.rooms[room]
	if !ok {
		return []Member{}
	}

	snapshot := make([]Member, len(rm.ordered))
	copy(snapshot, rm.ordered)
	return snapshot
}

// Count returns the current member count of the room; 0 for an unknown room.
func (m *Membership) Count(room string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rm, ok := m.rooms[room]
	if !ok {
		return 0
	}
	return len(rm.ordered)
}

// HasUsername reports whether the username is currently a member of the room.
func (m *Membership) HasUsername(room, username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rm, ok := m.rooms[room]
	if !ok {
		return false
	}

	_, present := rm.byName[username]
	return present
}
