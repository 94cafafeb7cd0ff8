/*
Package history is the optional persistence side-channel for chat messages.

This file defines the Store, which subscribes to the core's event feed and
records message-new events. Recording failures are logged and never propagate
into the broadcast path.
*/
package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"chatter/internal/app/broadcast"
	"chatter/internal/pkg/logx"
)

// recordTimeout bounds one insert triggered by the event feed.
const recordTimeout = 3 * time.Second

// StoredMessage is one persisted chat message.
type StoredMessage struct {
	ID       int64     `json:"id"`
	RoomSlug string    `json:"room"`
	Username string    `json:"username"`
	Body     string    `json:"msg"`
	SentAt   time.Time `json:"sentAt"`
}

// Store persists chat messages to PostgreSQL.
type Store struct {
	pool *pgxpool.Pool

	logger zerolog.Logger
}

// NewStore constructs a Store over an initialized connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: logx.Logger().With().Str("component", "HistoryStore").Logger(),
	}
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SaveMessage inserts one chat message.
func (s *Store) SaveMessage(ctx context.Context, room, username, body string, sentAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (room_slug, username, body, sent_at) VALUES ($1, $2, $3, $4)`,
		room, username, body, sentAt,
	)
	return err
}

// Recent returns up to limit messages for the room, newest first.
func (s *Store) Recent(ctx context.Context, room string, limit int) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, room_slug, username, body, sent_at
		   FROM messages
		  WHERE room_slug = $1
		  ORDER BY sent_at DESC
		  LIMIT $2`,
		room, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]StoredMessage, 0, limit)
	for rows.Next() {
		var msg StoredMessage
		if err := rows.Scan(&msg.ID, &msg.RoomSlug, &msg.Username, &msg.Body, &msg.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// RecordEvent is the broadcast.EventObserver fed by the core's side channel.
// It records message-new events and ignores everything else.
func (s *Store) RecordEvent(ev broadcast.Event) {
	if ev.Kind != broadcast.EventMessageNew {
		return
	}

	username, _ := ev.Payload["username"].(string)
	body, _ := ev.Payload["msg"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := s.SaveMessage(ctx, ev.Room, username, body, time.Now()); err != nil {
		s.logger.Error().
			Err(err).
			Str("room", ev.Room).
			Str("username", username).
			Msg("Failed to record chat message.")
	}
}
