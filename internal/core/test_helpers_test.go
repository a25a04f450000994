package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// expectQuiet fails if any event shows up on ch within a short window.
func expectQuiet(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func startHub(t *testing.T, opts ...RegistryOption) Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(NewRegistry(opts...), nil)
	go hub.Run(ctx)
	return hub
}

func connect(hub Hub, id string) *Client {
	c := NewClient(id, 16)
	hub.RegisterClient(c)
	return c
}

func fixedPassword(pw string) RegistryOption {
	return WithPasswordGenerator(func() string { return pw })
}
