package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/chatrooms/internal/domain"
	"github.com/immxrtalbeast/chatrooms/internal/ratelimit"
	"github.com/immxrtalbeast/chatrooms/internal/repository"
	"github.com/immxrtalbeast/chatrooms/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewRoomService(
		repository.NewInMemoryRoomRepository(),
		repository.NewInMemoryMessageRepository(),
		ratelimit.NewFixedWindow(5*time.Second, 4),
		log,
	)
	router := SetupRouter(NewRoomController(svc, log))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func createRoom(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/rooms/create", "application/json", nil)
	if err != nil {
		t.Fatalf("create room request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create room status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode create room response: %v", err)
	}
	if body.Code == "" {
		t.Fatal("create room returned empty code")
	}
	return body.Code
}

func dialRoom(t *testing.T, srv *httptest.Server, code, name string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/rooms/" + code + "/ws?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads events until match returns true or the deadline hits.
func readUntil(t *testing.T, conn *websocket.Conn, match func(domain.Event) bool) domain.Event {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	for {
		var event domain.Event
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("reading events: %v", err)
		}
		if match(event) {
			return event
		}
	}
}

func TestJoinUnknownRoomReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/rooms/no-such-room/ws?name=Alice")
	if err != nil {
		t.Fatalf("join request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("join unknown room status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	alice := dialRoom(t, srv, code, "Alice")

	// Alice sees her own join announcement as a live event.
	readUntil(t, alice, func(e domain.Event) bool {
		return e.Type == domain.EventUpdate &&
			e.Username == domain.SystemName &&
			e.Message == "Alice has joined the chat"
	})

	bob := dialRoom(t, srv, code, "Bob")

	// Bob's replay starts with the pre-join history.
	readUntil(t, bob, func(e domain.Event) bool {
		return e.Type == domain.EventUpdate &&
			e.Message == "Alice has joined the chat"
	})
	// The roster announcement reaches both sessions.
	readUntil(t, bob, func(e domain.Event) bool {
		return e.Type == domain.EventUserJoin && e.Username == "Bob"
	})
	readUntil(t, alice, func(e domain.Event) bool {
		return e.Type == domain.EventUserJoin && e.Username == "Bob"
	})

	// A post is broadcast to every member including the sender.
	if err := alice.WriteJSON(inboundFrame{Type: frameNewMessage, Message: "hello Bob"}); err != nil {
		t.Fatalf("write post frame: %v", err)
	}
	for name, conn := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		event := readUntil(t, conn, func(e domain.Event) bool {
			return e.Type == domain.EventUpdate && e.Username == "Alice"
		})
		if event.Message != "hello Bob" {
			t.Errorf("%s received message %q, want %q", name, event.Message, "hello Bob")
		}
	}

	// An invalid post is answered with an error event to the sender only.
	if err := alice.WriteJSON(inboundFrame{Type: frameNewMessage, Message: ""}); err != nil {
		t.Fatalf("write invalid frame: %v", err)
	}
	readUntil(t, alice, func(e domain.Event) bool {
		return e.Type == domain.EventError
	})

	// Bob leaving announces user_leave and the disconnect message.
	if err := bob.WriteJSON(inboundFrame{Type: frameLeave}); err != nil {
		t.Fatalf("write leave frame: %v", err)
	}
	readUntil(t, alice, func(e domain.Event) bool {
		return e.Type == domain.EventUserLeave && e.Username == "Bob"
	})
	readUntil(t, alice, func(e domain.Event) bool {
		return e.Type == domain.EventUpdate &&
			e.Username == domain.SystemName &&
			e.Message == "Bob has disconnected"
	})
}

func TestJoinWithTakenNameGetsErrorEvent(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	alice := dialRoom(t, srv, code, "Alice")
	readUntil(t, alice, func(e domain.Event) bool {
		return e.Type == domain.EventUserJoin && e.Username == "Alice"
	})

	imposter := dialRoom(t, srv, code, "Alice")
	event := readUntil(t, imposter, func(e domain.Event) bool {
		return e.Type == domain.EventError
	})
	if !strings.Contains(event.Reason, "taken") {
		t.Errorf("error reason = %q, want a name-taken reason", event.Reason)
	}
}

func TestRoomEndpoints(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	zoe := dialRoom(t, srv, code, "Zoe")
	readUntil(t, zoe, func(e domain.Event) bool {
		return e.Type == domain.EventUserJoin && e.Username == "Zoe"
	})
	dialRoom(t, srv, code, "Alice")

	// Give the server a moment to finish both joins.
	deadline := time.Now().Add(2 * time.Second)
	var members []string
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/api/rooms/" + code + "/members")
		if err != nil {
			t.Fatalf("members request: %v", err)
		}
		var body struct {
			Members []string `json:"members"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode members response: %v", err)
		}
		resp.Body.Close()
		members = body.Members
		if len(members) == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if len(members) != 2 || members[0] != "Alice" || members[1] != "Zoe" {
		t.Fatalf("members = %v, want sorted [Alice Zoe]", members)
	}

	resp, err := http.Get(srv.URL + "/api/rooms/" + code + "/messages")
	if err != nil {
		t.Fatalf("messages request: %v", err)
	}
	defer resp.Body.Close()

	var history struct {
		Messages []struct {
			Username string `json:"username"`
			Message  string `json:"message"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode messages response: %v", err)
	}
	if len(history.Messages) != 2 {
		t.Fatalf("history has %d messages, want 2 join announcements", len(history.Messages))
	}
	if history.Messages[0].Message != "Zoe has joined the chat" {
		t.Errorf("first history entry = %q, want Zoe's join announcement", history.Messages[0].Message)
	}
}
