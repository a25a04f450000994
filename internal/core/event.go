package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomCreated confirms room creation to the host.
	EventRoomCreated EventKind = iota
	// EventJoinSuccess confirms a join and carries the assigned peer ID.
	EventJoinSuccess
	// EventPlayerList broadcasts the room membership and ready flags.
	EventPlayerList
	// EventStartGame broadcasts the sealed room's peer IDs.
	EventStartGame
	// EventRoomClosed tells remaining players the host left.
	EventRoomClosed
	// EventRelay delivers a signaling payload from another peer.
	EventRelay
	// EventError notifies the requester about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// A single Event may be shared by every recipient of a broadcast and must
// not be mutated after it is emitted.
type Event struct {
	Kind    EventKind
	Room    *RoomSnapshot
	PeerID  int // assigned ID for EventJoinSuccess, sender ID for EventRelay
	Players []PlayerState
	PeerIDs []int
	Signal  SignalKind
	Payload json.RawMessage
	Error   *CoreError
}
