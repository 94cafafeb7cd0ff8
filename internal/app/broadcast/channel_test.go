package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
)

// captureChannel is a test double for the outbound delivery capability.
// It records every payload it receives and can be configured to fail or block.
type captureChannel struct {
	mu     sync.Mutex
	frames [][]byte

	// fail, when set, is returned by Deliver instead of recording.
	fail error

	// block, when true, makes Deliver wait for context expiry.
	block bool
}

func (c *captureChannel) Deliver(ctx context.Context, payload []byte) error {
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail != nil {
		return c.fail
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *captureChannel) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// Events decodes every recorded frame into a generic map.
func (c *captureChannel) Events(t *testing.T) []map[string]any {
	t.Helper()

	frames := c.Frames()
	events := make([]map[string]any, 0, len(frames))
	for _, frame := range frames {
		var ev map[string]any
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("failed to decode captured frame %q: %v", frame, err)
		}
		events = append(events, ev)
	}
	return events
}

// eventKinds extracts the "event" field of each decoded frame.
func eventKinds(t *testing.T, c *captureChannel) []string {
	t.Helper()

	kinds := []string{}
	for _, ev := range c.Events(t) {
		kind, _ := ev["event"].(string)
		kinds = append(kinds, kind)
	}
	return kinds
}

// usernamesOf extracts the member usernames from a decoded members payload.
func usernamesOf(ev map[string]any) []string {
	raw, _ := ev["members"].([]any)
	names := []string{}
	for _, entry := range raw {
		m, _ := entry.(map[string]any)
		name, _ := m["username"].(string)
		names = append(names, name)
	}
	return names
}
