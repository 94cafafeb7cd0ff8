/*
Package session bridges WebSocket connections to the broadcast core.

This file defines the Client struct, representing one active WebSocket
connection. It manages the connection lifecycle, the message pumps (ReadPump and
WritePump), and implements the outbound delivery capability the registry binds
to the connection.
*/
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatter/internal/app/broadcast"
	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) of message text.
	MaxContentBytes = 5000

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// Client represents one active WebSocket connection attached to a room.
type Client struct {
	// room is the slug of the room this connection is attached to.
	room string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// connID is the identifier the registry assigned to this connection.
	connID string

	registry *broadcast.Registry
	router   *broadcast.Router
	service  *broadcast.Service

	// send queues outbound frames for WritePump.
	send chan []byte

	// done is closed exactly once when the connection is torn down.
	done chan struct{}

	// closeOnce guards the teardown path: an inbound close and a delivery
	// failure racing each other still produce a single disconnect.
	closeOnce sync.Once

	// structured logger with connection and room context.
	logger zerolog.Logger
}

// NewClient registers the connection with the registry, attaches it to the
// room's fan-out group, and returns the ready Client. The caller starts the
// pumps.
func NewClient(room string, conn *websocket.Conn, registry *broadcast.Registry, router *broadcast.Router, service *broadcast.Service) *Client {
	c := &Client{
		room:     room,
		conn:     conn,
		registry: registry,
		router:   router,
		service:  service,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}

	c.connID = registry.Register(c)
	c.logger = logx.Logger().With().
		Str("connection_id", c.connID).
		Str("room", room).
		Logger()

	service.Connect(room, c.connID)

	return c
}

// ConnectionID returns the registry-assigned identifier of this connection.
func (c *Client) ConnectionID() string {
	return c.connID
}

// Deliver implements broadcast.Channel: it queues the payload for WritePump.
// It fails once the connection is torn down or the context expires, letting the
// fan-out report this recipient instead of blocking on it.
func (c *Client) Deliver(ctx context.Context, payload []byte) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadPump reads frames from the WebSocket connection, handles heartbeats
// (Pong), dispatches decoded events, and performs cleanup on connection close.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// processInboundFrame decodes one raw frame and dispatches it through the event
// router. Operation errors produce a directed error frame to this connection
// only; they never terminate it.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var ev broadcast.InboundEvent
	if err := json.Unmarshal(frameBytes, &ev); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		c.sendErrorFrame(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if len(ev.Text) > MaxContentBytes {
		c.sendErrorFrame(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	if err := c.router.Dispatch(context.Background(), c.room, c.connID, ev); err != nil {
		c.sendErrorFrame(err)
	}
}

// cleanupOnDisconnect runs the teardown path exactly once: the member leaves
// the room, the connection leaves the fan-out set, and the registry binding is
// removed.
func (c *Client) cleanupOnDisconnect() {
	c.closeOnce.Do(func() {
		c.logger.Info().Msg("Client connection cleanup starting.")

		c.service.Disconnect(context.Background(), c.room, c.connID)
		c.registry.Unregister(c.connID)

		close(c.done)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	})
}

// WritePump writes queued frames to the WebSocket connection and maintains the
// heartbeat. It terminates when the connection is torn down or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.cleanupOnDisconnect()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error().Err(err).Msg("Error writing frame")
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// errorFrame is the directed frame answering a rejected operation. It goes to
// the originating connection only, never through the room broadcast.
type errorFrame struct {
	Event   string `json:"event"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendErrorFrame queues a directed error frame for this connection.
func (c *Client) sendErrorFrame(err error) {
	code := errs.ErrUnknown
	message := "Something went wrong. Please try again."

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	}

	frame, marshalErr := json.Marshal(errorFrame{
		Event:   "error",
		Code:    code,
		Message: message,
	})
	if marshalErr != nil {
		c.logger.Error().Err(marshalErr).Msg("Failed to build error frame")
		return
	}

	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping error frame")
	}
}
