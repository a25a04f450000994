package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// seatedRoom creates "abcd" with host and one joiner, draining setup events.
func seatedRoom(t *testing.T, hub Hub, maxPlayers int) (host, guest *Client) {
	t.Helper()

	host = connect(hub, "host")
	guest = connect(hub, "guest")

	host.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: maxPlayers}
	mustEvent(t, host.Events, EventRoomCreated)

	guest.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	mustEvent(t, guest.Events, EventJoinSuccess)
	mustEvent(t, guest.Events, EventPlayerList)
	mustEvent(t, host.Events, EventPlayerList)
	return host, guest
}

func TestHubCreateRoom(t *testing.T) {
	hub := startHub(t, fixedPassword("pw42"))
	host := connect(hub, "host")

	host.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 2}

	ev := mustEvent(t, host.Events, EventRoomCreated)
	room := ev.Room
	if room == nil || room.Name != "abcd" || room.HostID != "host" || room.Sealed || room.Password != "pw42" {
		t.Fatalf("unexpected room snapshot: %+v", room)
	}
	if len(room.Players) != 1 || room.Players[0] != (PlayerState{PeerID: 1, Ready: true}) {
		t.Fatalf("unexpected players: %+v", room.Players)
	}
}

func TestHubCreateRoomErrors(t *testing.T) {
	hub := startHub(t)
	a := connect(hub, "a")
	b := connect(hub, "b")

	a.Commands <- &Command{Kind: CommandCreateRoom, Room: "ab", MaxPlayers: 2}
	ev := mustEvent(t, a.Events, EventError)
	if ev.Error.Code != ErrCodeInvalidName {
		t.Fatalf("expected invalid_name, got %+v", ev.Error)
	}

	a.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 2}
	mustEvent(t, a.Events, EventRoomCreated)

	b.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 2}
	ev = mustEvent(t, b.Events, EventError)
	if ev.Error.Code != ErrCodeNameTaken {
		t.Fatalf("expected name_taken, got %+v", ev.Error)
	}

	a.Commands <- &Command{Kind: CommandCreateRoom, Room: "other", MaxPlayers: 2}
	ev = mustEvent(t, a.Events, EventError)
	if ev.Error.Code != ErrCodeAlreadyInRoom {
		t.Fatalf("expected already_in_room, got %+v", ev.Error)
	}
}

func TestHubJoinBroadcastsPlayerList(t *testing.T) {
	hub := startHub(t)
	host := connect(hub, "host")
	guest := connect(hub, "guest")

	host.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 2}
	mustEvent(t, host.Events, EventRoomCreated)

	guest.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	joined := mustEvent(t, guest.Events, EventJoinSuccess)
	if joined.PeerID != 2 || joined.Room == nil || joined.Room.Name != "abcd" {
		t.Fatalf("unexpected join_success: %+v", joined)
	}

	want := []PlayerState{{PeerID: 1, Ready: true}, {PeerID: 2, Ready: false}}
	for _, c := range []*Client{host, guest} {
		ev := mustEvent(t, c.Events, EventPlayerList)
		if len(ev.Players) != 2 || ev.Players[0] != want[0] || ev.Players[1] != want[1] {
			t.Fatalf("client %s: unexpected players %+v", c.ID, ev.Players)
		}
	}
}

func TestHubJoinFullRoom(t *testing.T) {
	hub := startHub(t)
	seatedRoom(t, hub, 2)

	third := connect(hub, "third")
	third.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	ev := mustEvent(t, third.Events, EventError)
	if ev.Error.Code != ErrCodeRoomFull || ev.Error.Message != "Room is full." {
		t.Fatalf("expected room_full, got %+v", ev.Error)
	}
}

func TestHubReadyAndSeal(t *testing.T) {
	hub := startHub(t)
	host, guest := seatedRoom(t, hub, 4)

	host.Commands <- &Command{Kind: CommandSealRoom}
	ev := mustEvent(t, host.Events, EventError)
	if ev.Error.Code != ErrCodeNotAllReady {
		t.Fatalf("expected not_all_ready, got %+v", ev.Error)
	}
	expectQuiet(t, guest.Events)

	guest.Commands <- &Command{Kind: CommandSetReady, Ready: true}
	for _, c := range []*Client{host, guest} {
		ev := mustEvent(t, c.Events, EventPlayerList)
		if len(ev.Players) != 2 || !ev.Players[0].Ready || !ev.Players[1].Ready {
			t.Fatalf("client %s: unexpected players %+v", c.ID, ev.Players)
		}
	}

	// Non-host seal is silently ignored.
	guest.Commands <- &Command{Kind: CommandSealRoom}
	expectQuiet(t, guest.Events)
	expectQuiet(t, host.Events)

	host.Commands <- &Command{Kind: CommandSealRoom}
	for _, c := range []*Client{host, guest} {
		ev := mustEvent(t, c.Events, EventStartGame)
		if len(ev.PeerIDs) != 2 || ev.PeerIDs[0] != 1 || ev.PeerIDs[1] != 2 {
			t.Fatalf("client %s: unexpected start_game %+v", c.ID, ev.PeerIDs)
		}
	}

	// Sealing twice does not broadcast again.
	host.Commands <- &Command{Kind: CommandSealRoom}
	expectQuiet(t, host.Events)

	late := connect(hub, "late")
	late.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	ev = mustEvent(t, late.Events, EventError)
	if ev.Error.Code != ErrCodeRoomUnavailable || ev.Error.Message != "Room not found or is sealed." {
		t.Fatalf("expected room_unavailable, got %+v", ev.Error)
	}
}

func TestHubHostDisconnectClosesRoom(t *testing.T) {
	hub := startHub(t)
	host, guest := seatedRoom(t, hub, 3)

	hub.UnregisterClient(host)
	mustEvent(t, guest.Events, EventRoomClosed)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, ok, err := hub.Room(ctx, "abcd"); err != nil || ok {
		t.Fatalf("expected room removed, ok=%v err=%v", ok, err)
	}

	// The guest is free to host a room of its own.
	guest.Commands <- &Command{Kind: CommandCreateRoom, Room: "efgh", MaxPlayers: 2}
	mustEvent(t, guest.Events, EventRoomCreated)

	other := connect(hub, "other")
	other.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	ev := mustEvent(t, other.Events, EventError)
	if ev.Error.Code != ErrCodeRoomUnavailable {
		t.Fatalf("expected room_unavailable, got %+v", ev.Error)
	}
}

func TestHubGuestDisconnectUpdatesList(t *testing.T) {
	hub := startHub(t)
	host, guest := seatedRoom(t, hub, 2)

	hub.UnregisterClient(guest)
	ev := mustEvent(t, host.Events, EventPlayerList)
	if len(ev.Players) != 1 || ev.Players[0].PeerID != 1 {
		t.Fatalf("unexpected players after leave: %+v", ev.Players)
	}

	// Room stays joinable; the new player gets a fresh peer ID.
	next := connect(hub, "next")
	next.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	joined := mustEvent(t, next.Events, EventJoinSuccess)
	if joined.PeerID != 3 {
		t.Fatalf("expected peer 3, got %d", joined.PeerID)
	}
}

func TestHubLeaveRoomKeepsConnection(t *testing.T) {
	hub := startHub(t)
	host, guest := seatedRoom(t, hub, 2)

	guest.Commands <- &Command{Kind: CommandLeaveRoom}
	mustEvent(t, host.Events, EventPlayerList)

	guest.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	joined := mustEvent(t, guest.Events, EventJoinSuccess)
	if joined.PeerID != 3 {
		t.Fatalf("expected peer 3 on rejoin, got %d", joined.PeerID)
	}
}

func TestHubRelay(t *testing.T) {
	hub := startHub(t)
	host, guest := seatedRoom(t, hub, 2)

	payload := json.RawMessage(`{"sdp":"v=0"}`)
	guest.Commands <- &Command{Kind: CommandRelay, Signal: SignalOffer, Target: 1, Payload: payload}

	ev := mustEvent(t, host.Events, EventRelay)
	if ev.Signal != SignalOffer || ev.PeerID != 2 || string(ev.Payload) != string(payload) {
		t.Fatalf("unexpected relay: %+v", ev)
	}

	host.Commands <- &Command{Kind: CommandRelay, Signal: SignalAnswer, Target: 2, Payload: json.RawMessage(`"ans"`)}
	ev = mustEvent(t, guest.Events, EventRelay)
	if ev.Signal != SignalAnswer || ev.PeerID != 1 {
		t.Fatalf("unexpected relay: %+v", ev)
	}

	guest.Commands <- &Command{Kind: CommandRelay, Signal: SignalOffer, Target: 3, Payload: payload}
	expectQuiet(t, host.Events)
	expectQuiet(t, guest.Events)
}

func TestHubRelayOutsideRoomDropped(t *testing.T) {
	hub := startHub(t)
	host := connect(hub, "host")
	loner := connect(hub, "loner")

	host.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 2}
	mustEvent(t, host.Events, EventRoomCreated)

	loner.Commands <- &Command{Kind: CommandRelay, Signal: SignalICECandidate, Target: 1, Payload: json.RawMessage(`{}`)}
	expectQuiet(t, host.Events)
	expectQuiet(t, loner.Events)
}

func TestHubSkipsClosedConnections(t *testing.T) {
	hub := startHub(t)
	host, guest := seatedRoom(t, hub, 3)

	// The connection is gone but the disconnect is not processed yet.
	guest.closed.Store(true)

	third := connect(hub, "third")
	third.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	mustEvent(t, host.Events, EventPlayerList)
	select {
	case ev := <-guest.Events:
		t.Fatalf("closed client received %+v", ev)
	default:
	}
}

func TestHubEvictsSaturatedClient(t *testing.T) {
	hub := startHub(t)
	host := connect(hub, "host")

	host.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 3}
	mustEvent(t, host.Events, EventRoomCreated)

	// join_success fills the single slot, so the player list overflows it.
	slow := NewClient("slow", 1)
	hub.RegisterClient(slow)
	slow.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}

	mustEvent(t, host.Events, EventPlayerList)
	ev := mustEvent(t, host.Events, EventPlayerList)
	if len(ev.Players) != 1 || ev.Players[0].PeerID != 1 {
		t.Fatalf("expected slow client removed from room, got %+v", ev.Players)
	}

	if first := <-slow.Events; first == nil || first.Kind != EventJoinSuccess {
		t.Fatalf("expected buffered join_success, got %+v", first)
	}
	select {
	case ev, ok := <-slow.Events:
		if ok {
			t.Fatalf("expected events closed, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("evicted client events not closed")
	}
	if slow.Open() {
		t.Fatal("evicted client still open")
	}

	// The room keeps working for everyone else.
	next := connect(hub, "next")
	next.Commands <- &Command{Kind: CommandJoinRoom, Room: "abcd"}
	joined := mustEvent(t, next.Events, EventJoinSuccess)
	if joined.PeerID != 3 {
		t.Fatalf("expected peer 3, got %d", joined.PeerID)
	}
}

func TestHubRoomsQuery(t *testing.T) {
	hub := startHub(t)
	seatedRoom(t, hub, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rooms, err := hub.Rooms(ctx)
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Name != "abcd" || len(rooms[0].Players) != 2 || rooms[0].MaxPlayers != 3 {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
}

func TestHubStopClosesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := connect(hub, "a")
	c.Commands <- &Command{Kind: CommandCreateRoom, Room: "abcd", MaxPlayers: 2}
	mustEvent(t, c.Events, EventRoomCreated)

	cancel()
	<-done

	if _, ok := <-c.Events; ok {
		t.Fatal("expected events channel closed")
	}
	if _, err := hub.Rooms(context.Background()); err != ErrHubStopped {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
}
