package core

import "sort"

const (
	minRoomNameLen = 3
	maxRoomNameLen = 12
	minPlayers     = 2
	maxPlayers     = 4
	hostPeerID     = 1
)

// Player is a room member as tracked by the registry.
type Player struct {
	ClientID string
	PeerID   int
	Ready    bool
}

// PlayerState is the externally visible part of a player.
type PlayerState struct {
	PeerID int
	Ready  bool
}

// Room is a named lobby of up to four players.
type Room struct {
	Name       string
	Password   string
	MaxPlayers int
	HostID     string
	Sealed     bool

	players    map[string]*Player
	nextPeerID int
}

// RoomSnapshot is an immutable copy of a room handed out of the hub loop.
type RoomSnapshot struct {
	Name       string
	Password   string
	MaxPlayers int
	HostID     string
	Players    []PlayerState
	Sealed     bool
}

func newRoom(name, password string, max int, hostID string) *Room {
	r := &Room{
		Name:       name,
		Password:   password,
		MaxPlayers: clampPlayers(max),
		HostID:     hostID,
		players:    make(map[string]*Player),
		nextPeerID: hostPeerID,
	}
	r.addPlayer(hostID, true)
	return r
}

func clampPlayers(n int) int {
	switch {
	case n < minPlayers:
		return minPlayers
	case n > maxPlayers:
		return maxPlayers
	default:
		return n
	}
}

// addPlayer registers clientID under the next unused peer ID.
func (r *Room) addPlayer(clientID string, ready bool) *Player {
	p := &Player{ClientID: clientID, PeerID: r.nextPeerID, Ready: ready}
	r.nextPeerID++
	r.players[clientID] = p
	return p
}

// Player returns the member owned by clientID.
func (r *Room) Player(clientID string) (*Player, bool) {
	p, ok := r.players[clientID]
	return p, ok
}

// PlayerByPeerID finds a member by its peer ID.
func (r *Room) PlayerByPeerID(peerID int) (*Player, bool) {
	for _, p := range r.players {
		if p.PeerID == peerID {
			return p, true
		}
	}
	return nil, false
}

// Full reports whether no further player fits.
func (r *Room) Full() bool {
	return len(r.players) >= r.MaxPlayers
}

// AllReady reports whether every member has flagged ready.
func (r *Room) AllReady() bool {
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// members returns players ordered by peer ID.
func (r *Room) members() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeerID < out[j].PeerID })
	return out
}

// PlayerStates lists {peerId, ready} ordered by peer ID.
func (r *Room) PlayerStates() []PlayerState {
	members := r.members()
	out := make([]PlayerState, 0, len(members))
	for _, p := range members {
		out = append(out, PlayerState{PeerID: p.PeerID, Ready: p.Ready})
	}
	return out
}

// PeerIDs lists member peer IDs in ascending order.
func (r *Room) PeerIDs() []int {
	members := r.members()
	out := make([]int, 0, len(members))
	for _, p := range members {
		out = append(out, p.PeerID)
	}
	return out
}

// ClientIDs lists member identities ordered by peer ID.
func (r *Room) ClientIDs() []string {
	members := r.members()
	out := make([]string, 0, len(members))
	for _, p := range members {
		out = append(out, p.ClientID)
	}
	return out
}

// Snapshot copies the room state.
func (r *Room) Snapshot() RoomSnapshot {
	return RoomSnapshot{
		Name:       r.Name,
		Password:   r.Password,
		MaxPlayers: r.MaxPlayers,
		HostID:     r.HostID,
		Players:    r.PlayerStates(),
		Sealed:     r.Sealed,
	}
}
