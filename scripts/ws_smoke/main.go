package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/pflag"

	"github.com/vovakirdan/wirelobby/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run plays a host and a guest through create, join, ready, seal and one
// relayed offer against a live server.
func run() error {
	addr := pflag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	room := pflag.String("room", fmt.Sprintf("smoke%d", time.Now().Unix()%10000), "room name (3-12 chars)")
	timeout := pflag.Duration("timeout", 5*time.Second, "total timeout for the run")
	pflag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	host, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer host.Close(websocket.StatusNormalClosure, "bye")

	guest, err := dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer guest.Close(websocket.StatusNormalClosure, "bye")

	steps := []struct {
		conn   *websocket.Conn
		send   proto.Inbound
		expect map[*websocket.Conn]string
	}{
		{
			conn:   host,
			send:   proto.Inbound{Type: proto.InboundTypeCreateRoom, Name: *room, MaxPlayers: 2},
			expect: map[*websocket.Conn]string{host: proto.OutboundTypeRoomCreated},
		},
		{
			conn: guest,
			send: proto.Inbound{Type: proto.InboundTypeJoinRoom, Name: *room},
			expect: map[*websocket.Conn]string{
				guest: proto.OutboundTypeJoinSuccess,
				host:  proto.OutboundTypePlayerListUpdate,
			},
		},
		{
			conn:   guest,
			send:   proto.Inbound{Type: proto.InboundTypeSetReady, IsReady: true},
			expect: map[*websocket.Conn]string{host: proto.OutboundTypePlayerListUpdate},
		},
		{
			conn:   host,
			send:   proto.Inbound{Type: proto.InboundTypeSealRoom},
			expect: map[*websocket.Conn]string{host: proto.OutboundTypeStartGame, guest: proto.OutboundTypeStartGame},
		},
		{
			conn:   guest,
			send:   proto.Inbound{Type: proto.InboundTypeOffer, Target: 1, Payload: json.RawMessage(`{"sdp":"smoke"}`)},
			expect: map[*websocket.Conn]string{host: proto.InboundTypeOffer},
		},
	}

	names := map[*websocket.Conn]string{host: "host", guest: "guest"}
	for _, step := range steps {
		if err := wsjson.Write(ctx, step.conn, step.send); err != nil {
			return fmt.Errorf("send %s: %w", step.send.Type, err)
		}
		for conn, want := range step.expect {
			raw, err := awaitType(ctx, conn, want)
			if err != nil {
				return fmt.Errorf("%s waiting for %s: %w", names[conn], want, err)
			}
			fmt.Printf("%s <- %s\n", names[conn], raw)
		}
	}

	fmt.Println("smoke run ok")
	return nil
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

// awaitType reads until a message of the wanted type arrives; error replies abort.
func awaitType(ctx context.Context, conn *websocket.Conn, want string) (json.RawMessage, error) {
	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		var head struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		switch head.Type {
		case want:
			return raw, nil
		case proto.OutboundTypeError:
			return nil, fmt.Errorf("server error: %s", head.Message)
		}
	}
}
