package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom creates a room hosted by the sender.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom adds the sender to an existing room.
	CommandJoinRoom
	// CommandSetReady toggles the sender's ready flag.
	CommandSetReady
	// CommandSealRoom locks the room and starts the session (host only).
	CommandSealRoom
	// CommandLeaveRoom removes the sender from its room without disconnecting.
	CommandLeaveRoom
	// CommandRelay forwards a signaling payload to another peer of the room.
	CommandRelay
)

// SignalKind names a relayed handshake message.
type SignalKind string

const (
	SignalOffer        SignalKind = "offer"
	SignalAnswer       SignalKind = "answer"
	SignalICECandidate SignalKind = "ice_candidate"
)

// Command represents an action requested by a client.
type Command struct {
	Kind       CommandKind
	Room       string
	MaxPlayers int
	Password   string
	Ready      bool

	Signal  SignalKind
	Target  int
	Payload json.RawMessage
}
