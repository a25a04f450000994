package core

import (
	"context"

	"github.com/rs/zerolog"
)

const inboxSize = 256

// Hub routes client commands to the room registry and fans the results out
// to connected clients.
type Hub interface {
	// Run processes events until ctx is cancelled.
	Run(ctx context.Context)
	// RegisterClient attaches a freshly connected client.
	RegisterClient(c *Client)
	// UnregisterClient detaches a client once its transport stopped sending.
	UnregisterClient(c *Client)
	// Rooms returns a snapshot of every room.
	Rooms(ctx context.Context) ([]RoomSnapshot, error)
	// Room returns a snapshot of a single room.
	Room(ctx context.Context, name string) (RoomSnapshot, bool, error)
}

type envelopeKind int

const (
	envRegister envelopeKind = iota
	envCommand
	envUnregister
	envQuery
)

type envelope struct {
	kind   envelopeKind
	client *Client
	cmd    *Command
	query  func(*Registry)
}

type hub struct {
	registry *Registry
	clients  map[string]*Client
	inbox    chan envelope
	done     chan struct{}
	log      zerolog.Logger

	// evicted holds clients whose event buffer overflowed; they are
	// disconnected once the current envelope is handled.
	evicted []*Client
}

// NewHub creates a hub around registry. A nil registry gets a fresh one and a
// nil logger disables logging.
func NewHub(registry *Registry, logger *zerolog.Logger) Hub {
	if registry == nil {
		registry = NewRegistry()
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "hub").Logger()
	}
	return &hub{
		registry: registry,
		clients:  make(map[string]*Client),
		inbox:    make(chan envelope, inboxSize),
		done:     make(chan struct{}),
		log:      l,
	}
}

// Run is the single goroutine that owns rooms and clients.
func (h *hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case env := <-h.inbox:
			h.handle(env)
		}
	}
}

func (h *hub) RegisterClient(c *Client) {
	if !h.enqueue(envelope{kind: envRegister, client: c}) {
		return
	}
	go h.forward(c)
}

func (h *hub) UnregisterClient(c *Client) {
	c.markClosed()
}

func (h *hub) Rooms(ctx context.Context) ([]RoomSnapshot, error) {
	reply := make(chan []RoomSnapshot, 1)
	err := h.query(ctx, func(r *Registry) { reply <- r.List() })
	if err != nil {
		return nil, err
	}
	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrHubStopped
	}
}

func (h *hub) Room(ctx context.Context, name string) (RoomSnapshot, bool, error) {
	type result struct {
		snap RoomSnapshot
		ok   bool
	}
	reply := make(chan result, 1)
	err := h.query(ctx, func(r *Registry) {
		room, ok := r.Get(name)
		if !ok {
			reply <- result{}
			return
		}
		reply <- result{snap: room.Snapshot(), ok: true}
	})
	if err != nil {
		return RoomSnapshot{}, false, err
	}
	select {
	case res := <-reply:
		return res.snap, res.ok, nil
	case <-ctx.Done():
		return RoomSnapshot{}, false, ctx.Err()
	case <-h.done:
		return RoomSnapshot{}, false, ErrHubStopped
	}
}

func (h *hub) query(ctx context.Context, fn func(*Registry)) error {
	select {
	case h.inbox <- envelope{kind: envQuery, query: fn}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *hub) enqueue(env envelope) bool {
	select {
	case h.inbox <- env:
		return true
	case <-h.done:
		return false
	}
}

// forward moves a client's commands into the shared inbox in order and, once
// the transport closes Commands, queues the disconnect behind them.
func (h *hub) forward(c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				h.enqueue(envelope{kind: envUnregister, client: c})
				return
			}
			if cmd == nil {
				continue
			}
			if !h.enqueue(envelope{kind: envCommand, client: c, cmd: cmd}) {
				return
			}
		case <-h.done:
			return
		}
	}
}

func (h *hub) handle(env envelope) {
	switch env.kind {
	case envRegister:
		h.clients[env.client.ID] = env.client
		h.log.Debug().Str("client_id", env.client.ID).Msg("client registered")
	case envUnregister:
		h.disconnect(env.client)
	case envCommand:
		if h.clients[env.client.ID] != env.client {
			return
		}
		h.dispatch(env.client, env.cmd)
	case envQuery:
		env.query(h.registry)
	}
	h.flushEvicted()
}

func (h *hub) flushEvicted() {
	for len(h.evicted) > 0 {
		c := h.evicted[0]
		h.evicted = h.evicted[1:]
		h.disconnect(c)
	}
}

func (h *hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandCreateRoom:
		h.createRoom(c, cmd)
	case CommandJoinRoom:
		h.joinRoom(c, cmd)
	case CommandSetReady:
		h.setReady(c, cmd)
	case CommandSealRoom:
		h.sealRoom(c)
	case CommandLeaveRoom:
		h.leaveRoom(c)
	case CommandRelay:
		h.relay(c, cmd)
	default:
		h.log.Debug().Str("client_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command dropped")
	}
}

func (h *hub) createRoom(c *Client, cmd *Command) {
	if c.room != "" {
		h.replyError(c, ErrAlreadyInRoom)
		return
	}
	room, err := h.registry.Create(cmd.Room, cmd.MaxPlayers, c.ID)
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.room = room.Name

	snap := room.Snapshot()
	h.deliver(planDirect(c, &Event{Kind: EventRoomCreated, Room: &snap}))
	h.log.Info().
		Str("room", room.Name).
		Str("client_id", c.ID).
		Int("max_players", room.MaxPlayers).
		Msg("room created")
}

func (h *hub) joinRoom(c *Client, cmd *Command) {
	if c.room != "" {
		h.replyError(c, ErrAlreadyInRoom)
		return
	}
	room, peerID, err := h.registry.Join(cmd.Room, c.ID, cmd.Password)
	if err != nil {
		h.replyError(c, err)
		return
	}
	c.room = room.Name

	snap := room.Snapshot()
	h.deliver(planDirect(c, &Event{Kind: EventJoinSuccess, Room: &snap, PeerID: peerID}))
	h.deliver(planBroadcast(room.ClientIDs(), h.clients, &Event{
		Kind:    EventPlayerList,
		Players: room.PlayerStates(),
	}))
	h.log.Info().Str("room", room.Name).Str("client_id", c.ID).Int("peer_id", peerID).Msg("player joined")
}

func (h *hub) setReady(c *Client, cmd *Command) {
	if c.room == "" {
		return
	}
	players, ok := h.registry.SetReady(c.room, c.ID, cmd.Ready)
	if !ok {
		return
	}
	room, _ := h.registry.Get(c.room)
	h.deliver(planBroadcast(room.ClientIDs(), h.clients, &Event{Kind: EventPlayerList, Players: players}))
}

func (h *hub) sealRoom(c *Client) {
	if c.room == "" {
		return
	}
	peerIDs, ok, err := h.registry.Seal(c.room, c.ID)
	if err != nil {
		h.replyError(c, err)
		return
	}
	if !ok {
		return
	}
	room, _ := h.registry.Get(c.room)
	h.deliver(planBroadcast(room.ClientIDs(), h.clients, &Event{Kind: EventStartGame, PeerIDs: peerIDs}))
	h.log.Info().Str("room", room.Name).Ints("peers", peerIDs).Msg("room sealed")
}

func (h *hub) leaveRoom(c *Client) {
	if c.room == "" {
		return
	}
	h.leave(c)
}

// leave detaches c from its room and notifies whoever is left behind.
func (h *hub) leave(c *Client) {
	res := h.registry.Leave(c.room, c.ID)
	c.room = ""

	switch res.Outcome {
	case LeaveHostDeparted:
		h.deliver(planBroadcast(res.Remaining, h.clients, &Event{Kind: EventRoomClosed}))
		for _, id := range res.Remaining {
			if other, ok := h.clients[id]; ok {
				other.room = ""
			}
		}
		h.log.Info().Str("room", res.Room).Str("client_id", c.ID).Msg("host left, room closed")
	case LeaveMembershipChanged:
		h.deliver(planBroadcast(res.Remaining, h.clients, &Event{Kind: EventPlayerList, Players: res.Players}))
		h.log.Info().Str("room", res.Room).Str("client_id", c.ID).Msg("player left")
	case LeaveNoop:
	}
}

func (h *hub) relay(c *Client, cmd *Command) {
	logger := h.log.With().Str("client_id", c.ID).Str("signal", string(cmd.Signal)).Int("target", cmd.Target).Logger()
	if c.room == "" {
		logger.Debug().Msg("relay dropped, sender not in a room")
		return
	}
	room, ok := h.registry.Get(c.room)
	if !ok {
		logger.Debug().Msg("relay dropped, room gone")
		return
	}
	sender, ok := room.Player(c.ID)
	if !ok {
		return
	}
	target, ok := room.PlayerByPeerID(cmd.Target)
	if !ok {
		logger.Debug().Str("room", room.Name).Msg("relay dropped, target not found")
		return
	}
	dst, ok := h.clients[target.ClientID]
	if !ok {
		return
	}
	h.deliver(planDirect(dst, &Event{
		Kind:    EventRelay,
		Signal:  cmd.Signal,
		PeerID:  sender.PeerID,
		Payload: cmd.Payload,
	}))
}

func (h *hub) disconnect(c *Client) {
	if h.clients[c.ID] != c {
		return
	}
	if c.room != "" {
		h.leave(c)
	}
	delete(h.clients, c.ID)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
}

func (h *hub) replyError(c *Client, err error) {
	ce, ok := asCoreError(err)
	if !ok {
		ce = coreError("internal", err.Error())
	}
	h.deliver(planDirect(c, &Event{Kind: EventError, Error: ce}))
}

// deliver performs non-blocking sends and skips closed clients. A client
// whose buffer is full is marked closed and evicted, so it never sees a
// partial event stream.
func (h *hub) deliver(ds []delivery) {
	for _, d := range ds {
		if !d.client.Open() {
			continue
		}
		select {
		case d.client.Events <- d.event:
		default:
			h.log.Warn().Str("client_id", d.client.ID).Msg("slow consumer, disconnecting")
			d.client.evict()
			h.evicted = append(h.evicted, d.client)
		}
	}
}

func (h *hub) shutdown() {
	for id, c := range h.clients {
		close(c.Events)
		delete(h.clients, id)
	}
	h.log.Info().Int("rooms", h.registry.Len()).Msg("hub stopped")
}
