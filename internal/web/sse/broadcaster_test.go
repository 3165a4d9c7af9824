package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/testutil"
)

func TestBroadcaster_ForwardsBroadcasts(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("ABCD")
	client := NewClient(hub, "spectator1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster.Notify(model.Direct("ABCD", "p1", model.EventWordAccepted, model.WordAcceptedPayload{Word: "ARBOL"}))
	broadcaster.Notify(model.Broadcast("ABCD", model.EventLifeLost, model.LifeLostPayload{PlayerID: "p1", Lives: 2}))

	select {
	case msg := <-client.send:
		expected := "event: LIFE_LOST\ndata: {\"playerId\":\"p1\",\"lives\":2}\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive message")
	}

	select {
	case msg := <-client.send:
		t.Errorf("direct notification leaked to spectator: %q", string(msg))
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBroadcaster_IgnoresRoomsWithoutSpectators(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	broadcaster.Notify(model.Broadcast("ABCD", model.EventRoomUpdate, nil))

	if manager.GetHub("ABCD") != nil {
		t.Error("Notify created a hub")
	}
}

func TestBroadcaster_RoomClosedEndsStream(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())
	hub := manager.GetOrCreateHub("ABCD")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/ABCD/events", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req = req.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ServeSSE(rec, req, hub, "spectator1", "ROOM_SNAPSHOT", `{"code":"ABCD"}`)
	}()
	waitForClients(t, hub, 1)

	broadcaster.Notify(model.Broadcast("ABCD", model.EventRoomClosed, model.RoomCodePayload{Code: "ABCD"}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after ROOM_CLOSED")
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: ROOM_SNAPSHOT\n") {
		t.Errorf("stream does not start with the snapshot: %q", body)
	}
	if !strings.Contains(body, "event: ROOM_CLOSED\ndata: {\"code\":\"ABCD\"}\n\n") {
		t.Errorf("stream is missing ROOM_CLOSED: %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if manager.GetHub("ABCD") != nil {
		t.Error("hub still registered after ROOM_CLOSED")
	}
}

func TestBroadcaster_MembershipIsIgnored(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	broadcaster.AddMember("ABCD", "p1")
	broadcaster.RemoveMember("ABCD", "p1")

	if manager.GetHub("ABCD") != nil {
		t.Error("membership changes created a hub")
	}
}
