package core

import (
	"crypto/subtle"
	"sort"
	"unicode/utf8"
)

// LeaveOutcome tells the router what a departure did to the room.
type LeaveOutcome int

const (
	// LeaveNoop means the room or the player did not exist.
	LeaveNoop LeaveOutcome = iota
	// LeaveMembershipChanged means a non-host left and the room survives.
	LeaveMembershipChanged
	// LeaveHostDeparted means the host left and the room was destroyed.
	LeaveHostDeparted
)

// LeaveResult describes the effect of Registry.Leave.
type LeaveResult struct {
	Outcome LeaveOutcome
	Room    string
	// Remaining holds identities of the players still attached to the room
	// (for a destroyed room: the players that must be told it closed).
	Remaining []string
	Players   []PlayerState
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPasswordEnforcement makes Join compare the supplied password.
func WithPasswordEnforcement(enabled bool) RegistryOption {
	return func(r *Registry) { r.enforcePassword = enabled }
}

// WithPasswordGenerator replaces the random room password source.
func WithPasswordGenerator(gen func() string) RegistryOption {
	return func(r *Registry) {
		if gen != nil {
			r.newPassword = gen
		}
	}
}

// Registry owns every room keyed by name. It is not safe for concurrent use;
// the Hub confines it to its event loop.
type Registry struct {
	rooms           map[string]*Room
	enforcePassword bool
	newPassword     func() string
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:       make(map[string]*Room),
		newPassword: newPassword,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new room hosted by requester. The name length is counted
// in Unicode code points, so a character outside the BMP counts once rather
// than as two UTF-16 units.
func (r *Registry) Create(name string, maxPlayers int, requester string) (*Room, error) {
	if n := utf8.RuneCountInString(name); n < minRoomNameLen || n > maxRoomNameLen {
		return nil, ErrInvalidName
	}
	if _, exists := r.rooms[name]; exists {
		return nil, ErrNameTaken
	}
	room := newRoom(name, r.newPassword(), maxPlayers, requester)
	r.rooms[name] = room
	return room, nil
}

// Join adds requester to the named room and returns its assigned peer ID.
func (r *Registry) Join(name, requester, password string) (*Room, int, error) {
	room, ok := r.rooms[name]
	if !ok || room.Sealed {
		return nil, 0, ErrRoomUnavailable
	}
	if r.enforcePassword && subtle.ConstantTimeCompare([]byte(password), []byte(room.Password)) != 1 {
		return nil, 0, ErrRoomUnavailable
	}
	if p, exists := room.players[requester]; exists {
		return room, p.PeerID, nil
	}
	if room.Full() {
		return nil, 0, ErrRoomFull
	}
	p := room.addPlayer(requester, false)
	return room, p.PeerID, nil
}

// SetReady updates the requester's ready flag. ok is false when the request
// does not apply to any current player.
func (r *Registry) SetReady(name, requester string, ready bool) ([]PlayerState, bool) {
	room, found := r.rooms[name]
	if !found {
		return nil, false
	}
	p, found := room.players[requester]
	if !found {
		return nil, false
	}
	p.Ready = ready
	return room.PlayerStates(), true
}

// Seal locks the room for the host once everyone is ready. ok is false when
// the request was ignored: unknown room, non-host requester or already sealed.
func (r *Registry) Seal(name, requester string) ([]int, bool, error) {
	room, found := r.rooms[name]
	if !found || room.HostID != requester || room.Sealed {
		return nil, false, nil
	}
	if !room.AllReady() {
		return nil, false, ErrNotAllReady
	}
	room.Sealed = true
	return room.PeerIDs(), true, nil
}

// Leave removes requester from the room. A departing host destroys the room.
func (r *Registry) Leave(name, requester string) LeaveResult {
	room, found := r.rooms[name]
	if !found {
		return LeaveResult{Outcome: LeaveNoop, Room: name}
	}
	if _, found := room.players[requester]; !found {
		return LeaveResult{Outcome: LeaveNoop, Room: name}
	}
	delete(room.players, requester)

	if requester == room.HostID {
		delete(r.rooms, name)
		return LeaveResult{
			Outcome:   LeaveHostDeparted,
			Room:      name,
			Remaining: room.ClientIDs(),
		}
	}
	return LeaveResult{
		Outcome:   LeaveMembershipChanged,
		Room:      name,
		Remaining: room.ClientIDs(),
		Players:   room.PlayerStates(),
	}
}

// Get returns the live room by name.
func (r *Registry) Get(name string) (*Room, bool) {
	room, ok := r.rooms[name]
	return room, ok
}

// List returns snapshots of every room ordered by name.
func (r *Registry) List() []RoomSnapshot {
	out := make([]RoomSnapshot, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered rooms.
func (r *Registry) Len() int {
	return len(r.rooms)
}
