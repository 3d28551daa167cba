package httpapi

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wordimpostor/backend/internal/hub"
	"github.com/wordimpostor/backend/internal/protocol"
)

func TestHealthz(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New(ctx, hub.Options{Words: []string{"playa", "circo"}})
	srv := httptest.NewServer(SetupRoutes(h, zap.NewNop()))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("healthz: want 200, got %d", resp.StatusCode)
	}
}

func TestListRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New(ctx, hub.Options{Words: []string{"playa", "circo"}})
	srv := httptest.NewServer(SetupRoutes(h, zap.NewNop()))
	defer srv.Close()

	// Seed one room through the hub itself.
	out := make(chan protocol.ServerMessage, 32)
	h.Inbox() <- hub.Connect{ConnID: "A", Outbox: out}
	h.Inbox() <- hub.FromClient{ConnID: "A", Msg: protocol.ClientMessage{Type: protocol.TypeSetName, Name: "Ana"}}
	h.Inbox() <- hub.FromClient{ConnID: "A", Msg: protocol.ClientMessage{Type: protocol.TypeCreateRoom, Name: "sala"}}

	deadline := time.After(time.Second)
	for {
		resp, err := srv.Client().Get(srv.URL + "/rooms")
		if err != nil {
			t.Fatalf("rooms: %v", err)
		}
		var rooms []protocol.RoomSummary
		if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
			t.Fatalf("decode rooms: %v", err)
		}
		resp.Body.Close()

		if len(rooms) == 1 {
			if rooms[0].Name != "sala" || rooms[0].Players != 1 || rooms[0].HasPassword {
				t.Fatalf("unexpected directory entry: %+v", rooms[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("room never showed up in /rooms, got %+v", rooms)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
