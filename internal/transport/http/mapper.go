package http

import (
	"math"

	"github.com/vovakirdan/wirelobby/internal/core"
	"github.com/vovakirdan/wirelobby/internal/proto"
)

// inboundToCommand maps a decoded client message onto a core command. ok is
// false for unknown message types.
func inboundToCommand(inbound proto.Inbound) (*core.Command, bool) {
	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		return &core.Command{
			Kind:       core.CommandCreateRoom,
			Room:       inbound.Name,
			MaxPlayers: saturate(inbound.MaxPlayers),
		}, true
	case proto.InboundTypeJoinRoom:
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Room:     inbound.Name,
			Password: inbound.Password,
		}, true
	case proto.InboundTypeSetReady:
		return &core.Command{Kind: core.CommandSetReady, Ready: inbound.IsReady}, true
	case proto.InboundTypeSealRoom:
		return &core.Command{Kind: core.CommandSealRoom}, true
	case proto.InboundTypeLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, true
	case proto.InboundTypeOffer, proto.InboundTypeAnswer, proto.InboundTypeICECandidate:
		return &core.Command{
			Kind:    core.CommandRelay,
			Signal:  core.SignalKind(inbound.Type),
			Target:  peerTarget(inbound.Target),
			Payload: inbound.Payload,
		}, true
	default:
		return nil, false
	}
}

// saturate truncates f into the int32 range; the registry clamps further.
func saturate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

// peerTarget maps a non-integral or out-of-range target to 0, which no peer holds.
func peerTarget(f float64) int {
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventRoomCreated:
		return proto.RoomCreated{
			Type: proto.OutboundTypeRoomCreated,
			Room: roomFromSnapshot(event.Room),
		}
	case core.EventJoinSuccess:
		return proto.JoinSuccess{
			Type:     proto.OutboundTypeJoinSuccess,
			Room:     roomFromSnapshot(event.Room),
			MyPeerID: event.PeerID,
		}
	case core.EventPlayerList:
		return proto.PlayerListUpdate{
			Type:    proto.OutboundTypePlayerListUpdate,
			Players: playersFromStates(event.Players),
		}
	case core.EventStartGame:
		peers := event.PeerIDs
		if peers == nil {
			peers = []int{}
		}
		return proto.StartGame{Type: proto.OutboundTypeStartGame, Players: peers}
	case core.EventRoomClosed:
		return proto.RoomClosed{Type: proto.OutboundTypeRoomClosed}
	case core.EventRelay:
		return proto.Signal{
			Type:    string(event.Signal),
			From:    event.PeerID,
			Payload: event.Payload,
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Error{Type: proto.OutboundTypeError, Message: "Unknown error."}
		}
		return proto.Error{Type: proto.OutboundTypeError, Message: event.Error.Message}
	default:
		return proto.Error{Type: proto.OutboundTypeError, Message: "Unknown event."}
	}
}

func roomFromSnapshot(snap *core.RoomSnapshot) proto.Room {
	if snap == nil {
		return proto.Room{Players: []proto.Player{}}
	}
	return proto.Room{
		Name:       snap.Name,
		Password:   snap.Password,
		MaxPlayers: snap.MaxPlayers,
		HostID:     snap.HostID,
		Players:    playersFromStates(snap.Players),
		Sealed:     snap.Sealed,
	}
}

func playersFromStates(states []core.PlayerState) []proto.Player {
	players := make([]proto.Player, 0, len(states))
	for _, s := range states {
		players = append(players, proto.Player{PeerID: s.PeerID, Ready: s.Ready})
	}
	return players
}
