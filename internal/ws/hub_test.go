package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	domA = "0a1b2c3d4e5f60718293a4b5c6d7e8f9"
	domB = "ffee00112233445566778899aabbccdd"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// waitFor polls cond until it holds or the deadline passes. Registration and
// broadcast run through the hub's event loop, so tests observe effects
// asynchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func newTestClient(h *Hub, domainID string, buf int) *Client {
	return &Client{hub: h, send: make(chan []byte, buf), DomainID: domainID}
}

func TestHub_BroadcastRoutesByDomain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(testLogger())
	go h.Run(ctx)

	a := newTestClient(h, domA, 8)
	b := newTestClient(h, domB, 8)
	h.Register(a)
	h.Register(b)
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	h.BroadcastEvent("project.insert", domA, json.RawMessage(`{"id":"p1"}`))

	select {
	case msg := <-a.send:
		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Type != "project.insert" {
			t.Errorf("type = %q, want project.insert", evt.Type)
		}
		if evt.ID != 1 {
			t.Errorf("id = %d, want 1", evt.ID)
		}
		if string(evt.Data) != `{"id":"p1"}` {
			t.Errorf("data = %s", evt.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client in the event's domain received nothing")
	}

	// The broadcast was fully routed before a received it, so this check
	// is not racy.
	select {
	case msg := <-b.send:
		t.Fatalf("client in another domain received %s", msg)
	default:
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(testLogger())
	go h.Run(ctx)

	c := newTestClient(h, domA, 1)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.Unregister(c)
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	if _, ok := <-c.send; ok {
		t.Error("send channel still open after unregister")
	}
}

func TestHub_PerDomainConnectionCap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(testLogger())
	go h.Run(ctx)

	for range maxConnectionsPerDomain {
		h.Register(newTestClient(h, domA, 1))
	}
	waitFor(t, func() bool { return h.ClientCount() == maxConnectionsPerDomain })

	extra := newTestClient(h, domA, 1)
	h.Register(extra)

	// The over-cap client is dropped by closing its send channel.
	waitFor(t, func() bool {
		select {
		case _, ok := <-extra.send:
			return !ok
		default:
			return false
		}
	})

	if n := h.ClientCount(); n != maxConnectionsPerDomain {
		t.Errorf("client count = %d, want %d", n, maxConnectionsPerDomain)
	}
}

func TestHub_SlowClientEvicted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(testLogger())
	go h.Run(ctx)

	// Buffer of one and no reader: the second broadcast cannot be
	// delivered and must evict the client instead of blocking the hub.
	c := newTestClient(h, domA, 1)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.BroadcastEvent("task.update", domA, json.RawMessage(`{}`))
	h.BroadcastEvent("task.update", domA, json.RawMessage(`{}`))

	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestHub_ReplayEventsSince(t *testing.T) {
	h := NewHub(testLogger())
	defer h.buffer.Stop()

	h.BroadcastEvent("contact.insert", domA, json.RawMessage(`{"n":1}`))
	h.BroadcastEvent("contact.update", domA, json.RawMessage(`{"n":2}`))
	h.BroadcastEvent("contact.delete", domA, json.RawMessage(`{"n":3}`))

	c := newTestClient(h, domA, 8)
	if !h.ReplayEvents(c, 1) {
		t.Fatal("replay of available events reported too-old")
	}

	var got []uint64
	for {
		select {
		case msg := <-c.send:
			var evt Event
			if err := json.Unmarshal(msg, &evt); err != nil {
				t.Fatalf("unmarshal replayed event: %v", err)
			}
			got = append(got, evt.ID)
			continue
		default:
		}
		break
	}

	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("replayed IDs = %v, want [2 3]", got)
	}

	// Up to date: nothing to replay, still fine.
	if !h.ReplayEvents(c, 3) {
		t.Error("up-to-date replay reported too-old")
	}
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected replay %s", msg)
	default:
	}
}

func TestHub_ReplayTooOldForBuffer(t *testing.T) {
	h := NewHub(testLogger())
	h.buffer.Stop()
	h.buffer = NewEventBuffer(2, time.Hour)
	defer h.buffer.Stop()

	h.BroadcastEvent("task.insert", domA, json.RawMessage(`{}`))
	h.BroadcastEvent("task.insert", domA, json.RawMessage(`{}`))
	h.BroadcastEvent("task.insert", domA, json.RawMessage(`{}`))

	// Buffer kept IDs 2 and 3; a client resuming from 1 has a gap and
	// must be told to refresh.
	c := newTestClient(h, domA, 8)
	if h.ReplayEvents(c, 1) {
		t.Error("replay from before the buffer window should report too-old")
	}
}
