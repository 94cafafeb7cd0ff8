/*
Package broadcast contains the room-based real-time broadcast core.

This file defines the Service, the control core tying registry, membership, and
group fan-out together. All mutating operations for one room are serialized
through that room's lock, which yields the per-room total delivery order;
operations on different rooms proceed fully in parallel.
*/
package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
)

// EventObserver receives every successfully broadcast event on a side channel,
// after fan-out. Observers run outside the room lock; a slow or failing
// observer never affects the core.
type EventObserver func(Event)

// Service orchestrates connect, join, leave, and message events for rooms.
type Service struct {
	// members owns the per-room member sets.
	members *Membership

	// groups is the fan-out primitive, passed in by the constructor; the Service
	// never reaches for a hidden process-wide group registry.
	groups *Group

	// mu protects the roomLocks table.
	mu sync.Mutex

	// roomLocks serializes mutating operations per room slug. Lock entries are
	// retained for the process lifetime; the member and fan-out state behind
	// them is reclaimed when a room empties.
	roomLocks map[string]*sync.Mutex

	// obsMu protects the observers list.
	obsMu sync.RWMutex

	// observers are notified asynchronously after each broadcast.
	observers []EventObserver

	// now supplies message timestamps; replaceable in tests.
	now func() time.Time

	// structured logger with Service context.
	logger zerolog.Logger
}

// NewService constructs a Service over the given membership store and group.
func NewService(members *Membership, groups *Group) *Service {
	return &Service{
		members:   members,
		groups:    groups,
		roomLocks: make(map[string]*sync.Mutex),
		now:       time.Now,
		logger:    logx.Logger().With().Str("component", "RoomService").Logger(),
	}
}

// Members exposes the read-only membership view for presence queries.
func (s *Service) Members() *Membership {
	return s.members
}

// SubscribeEvents registers an observer for the side-channel event feed.
func (s *Service) SubscribeEvents(fn EventObserver) {
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

// roomLock returns the mutex serializing operations for the given room,
// creating it on first reference.
func (s *Service) roomLock(room string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.roomLocks[room]
	if !ok {
		lock = &sync.Mutex{}
		s.roomLocks[room] = lock
	}
	return lock
}

// Connect performs the transport-level join: the connection starts receiving
// the room's broadcasts. It does not create a member; the application-level
// Join is a separate, later event.
func (s *Service) Connect(room, connID string) {
	lock := s.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	s.groups.Add(room, connID)

	s.logger.Info().
		Str("room", room).
		Str("connection_id", connID).
		Msg("Connection attached to room group.")
}

// Join adds a member to the room and broadcasts a user-join event carrying the
// updated member list. On ErrDuplicateUsername the error is surfaced to the
// caller and nothing is broadcast.
func (s *Service) Join(ctx context.Context, room, username, connID string) error {
	lock := s.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	if err := s.members.Add(room, username, connID); err != nil {
		return err
	}

	s.broadcast(ctx, newUserJoinEvent(room, username, s.members.List(room)))
	return nil
}

// Leave removes the member bound to connID from the room and broadcasts a
// user-leave event with the updated member list. The fan-out set cleanup is
// unconditional; if no member matched, the membership state is untouched,
// nothing is broadcast, and ErrMemberNotFound is returned for the caller to
// judge.
func (s *Service) Leave(ctx context.Context, room, connID string) error {
	lock := s.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	return s.leaveLocked(ctx, room, connID)
}

func (s *Service) leaveLocked(ctx context.Context, room, connID string) error {
	s.groups.Discard(room, connID)

	member, err := s.members.RemoveByConnection(room, connID)
	if err != nil {
		return err
	}

	s.broadcast(ctx, newUserLeaveEvent(room, member.Username, s.members.List(room)))
	return nil
}

// SendMessage broadcasts a message-new event to the room. It fails with
// ErrUnknownSender, without broadcasting, if the username is not currently a
// member of the room.
func (s *Service) SendMessage(ctx context.Context, room, username, text string) error {
	lock := s.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	if !s.members.HasUsername(room, username) {
		return errs.NewError(errs.ErrUnknownSender)
	}

	s.broadcast(ctx, newMessageEvent(room, username, text, s.now()))
	return nil
}

// Disconnect handles a connection vanishing: it unconditionally discards the
// connection from the room's fan-out set and, if a member was bound to it,
// performs the equivalent of Leave. The per-room lock plus the conditional
// membership removal make concurrent duplicate disconnects collapse into
// exactly one user-leave broadcast.
func (s *Service) Disconnect(ctx context.Context, room, connID string) {
	lock := s.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	if err := s.leaveLocked(ctx, room, connID); err != nil && !errs.HasCode(err, errs.ErrMemberNotFound) {
		s.logger.Error().
			Err(err).
			Str("room", room).
			Str("connection_id", connID).
			Msg("Disconnect cleanup failed.")
	}
}

// broadcast encodes the event, fans it out to the room, and feeds the observer
// side channel. Per-recipient delivery failures are aggregated, logged, and
// never roll back the state change that triggered the broadcast.
func (s *Service) broadcast(ctx context.Context, ev Event) {
	payload, err := ev.Encode()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("room", ev.Room).
			Str("event", string(ev.Kind)).
			Msg("Failed to encode event for broadcast.")
		return
	}

	if err := s.groups.Send(ctx, ev.Room, payload); err != nil {
		var deliveryErr *DeliveryError
		if errors.As(err, &deliveryErr) {
			for _, failure := range deliveryErr.Failures {
				s.logger.Warn().
					Err(failure.Err).
					Str("room", ev.Room).
					Str("event", string(ev.Kind)).
					Str("connection_id", failure.ConnectionID).
					Msg("Event delivery failed for recipient.")
			}
		} else {
			s.logger.Error().
				Err(err).
				Str("room", ev.Room).
				Str("event", string(ev.Kind)).
				Msg("Event fan-out failed.")
		}
	}

	s.notifyObservers(ev)
}

// notifyObservers feeds the event to each observer on its own goroutine.
func (s *Service) notifyObservers(ev Event) {
	s.obsMu.RLock()
	observers := make([]EventObserver, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	for _, fn := range observers {
		go fn(ev)
	}
}
