package broadcast

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJoinEventWireShape(t *testing.T) {
	ev := newUserJoinEvent("lobby", "bob", []Member{
		{Username: "alice", ConnectionID: "conn-1"},
		{Username: "bob", ConnectionID: "conn-2"},
	})

	frame, err := ev.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))

	assert.Equal(t, "user-join", decoded["event"])
	assert.Equal(t, "bob", decoded["username"])
	assert.Equal(t, []string{"alice", "bob"}, usernamesOf(decoded))

	// Member entries expose the username only, never the connection id.
	members := decoded["members"].([]any)
	entry := members[0].(map[string]any)
	assert.Len(t, entry, 1)
}

func TestMessageEventWireShape(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)
	ev := newMessageEvent("lobby", "alice", "hello there", at)

	frame, err := ev.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))

	assert.Equal(t, "message-new", decoded["event"])
	assert.Equal(t, "hello there", decoded["msg"])
	assert.Equal(t, "alice", decoded["username"])
	assert.Equal(t, "09:05:07 AM", decoded["time"])
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2} (AM|PM)$`), decoded["time"])
}
