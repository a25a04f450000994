package core

import (
	"sync"
	"sync/atomic"
)

const defaultClientBuffer = 32

// Client is a connected participant as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// room is owned by the hub loop.
	room string

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels. buffer bounds the
// number of undelivered events before the hub evicts the client.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
	}
}

// Open reports whether the underlying connection can still receive events.
func (c *Client) Open() bool {
	return !c.closed.Load()
}

// markClosed flags the connection as gone and stops accepting commands.
// The caller must be the only sender on Commands.
func (c *Client) markClosed() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.Commands)
	})
}

// evict stops event delivery without touching Commands, which the transport
// still owns.
func (c *Client) evict() {
	c.closed.Store(true)
}
