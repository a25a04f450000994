package proto

import "encoding/json"

// Inbound message types.
const (
	InboundTypeCreateRoom   = "create_room"
	InboundTypeJoinRoom     = "join_room"
	InboundTypeSetReady     = "set_ready"
	InboundTypeSealRoom     = "seal_room"
	InboundTypeLeaveRoom    = "leave_room"
	InboundTypeOffer        = "offer"
	InboundTypeAnswer       = "answer"
	InboundTypeICECandidate = "ice_candidate"
)

// Outbound message types.
const (
	OutboundTypeRoomCreated      = "room_created"
	OutboundTypeJoinSuccess      = "join_success"
	OutboundTypePlayerListUpdate = "player_list_update"
	OutboundTypeStartGame        = "start_game"
	OutboundTypeRoomClosed       = "room_closed"
	OutboundTypeError            = "error"
)

// Inbound is a flat JSON object sent by the client. Only the fields relevant
// to Type are read. Numeric fields are float64 so that clients emitting 3.0 or
// out-of-range values still decode.
type Inbound struct {
	Type       string          `json:"type"`
	Name       string          `json:"name,omitempty"`
	MaxPlayers float64         `json:"maxPlayers,omitempty"`
	Password   string          `json:"password,omitempty"`
	IsReady    bool            `json:"isReady,omitempty"`
	Target     float64         `json:"target,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Player is a {peerId, ready} pair.
type Player struct {
	PeerID int  `json:"peerId"`
	Ready  bool `json:"ready"`
}

// Room is the room snapshot sent on creation and join.
type Room struct {
	Name       string   `json:"name"`
	Password   string   `json:"password,omitempty"`
	MaxPlayers int      `json:"maxPlayers"`
	HostID     string   `json:"hostId,omitempty"`
	Players    []Player `json:"players"`
	Sealed     bool     `json:"sealed"`
}

// RoomCreated confirms room creation to its host.
type RoomCreated struct {
	Type string `json:"type"`
	Room Room   `json:"room"`
}

// JoinSuccess confirms a join to the joiner.
type JoinSuccess struct {
	Type     string `json:"type"`
	Room     Room   `json:"room"`
	MyPeerID int    `json:"myPeerId"`
}

// PlayerListUpdate broadcasts room membership.
type PlayerListUpdate struct {
	Type    string   `json:"type"`
	Players []Player `json:"players"`
}

// StartGame broadcasts the peer IDs of a sealed room.
type StartGame struct {
	Type    string `json:"type"`
	Players []int  `json:"players"`
}

// RoomClosed tells the remaining players that the host left.
type RoomClosed struct {
	Type string `json:"type"`
}

// Signal is a relayed offer, answer or ICE candidate.
type Signal struct {
	Type    string          `json:"type"`
	From    int             `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// Error describes a protocol-level error response.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
