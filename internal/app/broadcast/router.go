/*
Package broadcast contains the room-based real-time broadcast core.

This file defines the Router, the closed dispatch table mapping inbound client
frames to Service operations. The kind set is a closed enum: anything outside it
yields ErrUnrecognizedEvent, which the transport logs and drops without
terminating the connection.
*/
package broadcast

import (
	"context"

	"github.com/rs/zerolog"

	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
)

// Inbound event kinds accepted from clients.
const (
	// InboundUserJoin is the application-level join carrying the username.
	InboundUserJoin = "user-join"

	// InboundUserLeave is an explicit application-level leave.
	InboundUserLeave = "user-leave"

	// InboundMessageSend carries a chat message into the room.
	InboundMessageSend = "message-send"

	// InboundDisconnect mirrors the transport-close cleanup as a frame, for
	// clients that announce departure before closing the socket.
	InboundDisconnect = "disconnect"
)

// InboundEvent is one decoded client frame. Room and connection identifiers are
// supplied by the transport, not trusted from the frame body.
type InboundEvent struct {
	// Kind is the event-kind tag of the frame.
	Kind string `json:"event"`

	// Username carries the display name for user-join and message-send frames.
	Username string `json:"username,omitempty"`

	// Text carries the message body for message-send frames.
	Text string `json:"msg,omitempty"`
}

// Router dispatches inbound events to the corresponding Service operation.
type Router struct {
	service *Service

	logger zerolog.Logger
}

// NewRouter constructs a Router over the given Service.
func NewRouter(service *Service) *Router {
	return &Router{
		service: service,
		logger:  logx.Logger().With().Str("component", "EventRouter").Logger(),
	}
}

// Dispatch routes one inbound event for the given room and connection. Errors
// from the underlying operation are returned to the caller, which decides the
// user-visible behavior (typically a directed error frame to the sender only).
func (r *Router) Dispatch(ctx context.Context, room, connID string, ev InboundEvent) error {
	switch ev.Kind {
	case InboundUserJoin:
		return r.service.Join(ctx, room, ev.Username, connID)

	case InboundUserLeave:
		return r.service.Leave(ctx, room, connID)

	case InboundMessageSend:
		return r.service.SendMessage(ctx, room, ev.Username, ev.Text)

	case InboundDisconnect:
		r.service.Disconnect(ctx, room, connID)
		return nil

	default:
		r.logger.Warn().
			Str("room", room).
			Str("connection_id", connID).
			Str("event", ev.Kind).
			Msg("Dropping unrecognized inbound event.")

		return errs.NewError(errs.ErrUnrecognizedEvent, ev.Kind)
	}
}
