/*
Package broadcast contains the room-based real-time broadcast core: connection
registry, room membership, group fan-out, the room service orchestrating them,
and the inbound event router.

This file defines the Event type and the builders for the three outbound event
kinds. Events are ephemeral: constructed, fanned out, and discarded.
*/
package broadcast

import (
	"encoding/json"
	"time"
)

// EventKind identifies one of the outbound event kinds broadcast to a room.
type EventKind string

const (
	// EventUserJoin announces a member joining a room.
	EventUserJoin EventKind = "user-join"

	// EventUserLeave announces a member leaving a room.
	EventUserLeave EventKind = "user-leave"

	// EventMessageNew carries a chat message to the room.
	EventMessageNew EventKind = "message-new"
)

// messageTimeFormat renders the wall-clock time attached to chat messages,
// e.g. "09:41:05 PM".
const messageTimeFormat = "03:04:05 PM"

// MemberInfo is the wire representation of one room member.
type MemberInfo struct {
	Username string `json:"username"`
}

// Event is a single fan-out message scoped to one room.
type Event struct {
	// Kind tags the event for clients and observers.
	Kind EventKind

	// Room is the slug of the room the event is scoped to.
	Room string

	// Payload holds the kind-specific fields merged into the wire frame.
	Payload map[string]any
}

// Encode marshals the event into its wire frame: the payload fields plus an
// "event" field carrying the kind.
func (e Event) Encode() ([]byte, error) {
	frame := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		frame[k] = v
	}
	frame["event"] = string(e.Kind)

	return json.Marshal(frame)
}

// memberInfos converts an ordered member snapshot into its wire representation.
func memberInfos(members []Member) []MemberInfo {
	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, MemberInfo{Username: m.Username})
	}
	return infos
}

// newUserJoinEvent builds the user-join event carrying the updated member list
// and the joining username.
func newUserJoinEvent(room, username string, members []Member) Event {
	return Event{
		Kind: EventUserJoin,
		Room: room,
		Payload: map[string]any{
			"members":  memberInfos(members),
			"username": username,
		},
	}
}

// newUserLeaveEvent builds the user-leave event carrying the updated member list
// and the leaving username.
func newUserLeaveEvent(room, username string, members []Member) Event {
	return Event{
		Kind: EventUserLeave,
		Room: room,
		Payload: map[string]any{
			"members":  memberInfos(members),
			"username": username,
		},
	}
}

// newMessageEvent builds the message-new event for a chat message sent at the
// given wall-clock time.
func newMessageEvent(room, username, text string, at time.Time) Event {
	return Event{
		Kind: EventMessageNew,
		Room: room,
		Payload: map[string]any{
			"msg":      text,
			"username": username,
			"time":     at.Format(messageTimeFormat),
		},
	}
}
