package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirelobby/internal/config"
	"github.com/vovakirdan/wirelobby/internal/core"
)

func startTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, core.Hub) {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.Nop()
	hub := core.NewHub(core.NewRegistry(core.WithPasswordEnforcement(cfg.EnforceRoomPassword)), &disabledLogger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendJSON(ctx context.Context, t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()

	if err := wsjson.Write(ctx, conn, v); err != nil {
		t.Fatalf("send: %v", err)
	}
}

// readTyped waits for the next frame, checks its type and decodes it into T.
func readTyped[T any](ctx context.Context, t *testing.T, conn *websocket.Conn, wantType string) T {
	t.Helper()

	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var raw json.RawMessage
	if err := wsjson.Read(readCtx, conn, &raw); err != nil {
		t.Fatalf("no %s frame received: %v", wantType, err)
	}
	if len(raw) == 0 {
		t.Fatalf("empty frame while waiting for %s", wantType)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if head.Type != wantType {
		t.Fatalf("expected %s, got %s", wantType, raw)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", wantType, err)
	}
	return out
}
