package http

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/chatrooms/internal/domain"
	"github.com/immxrtalbeast/chatrooms/internal/service"
	"github.com/immxrtalbeast/chatrooms/lib/logger/sl"
)

// inboundFrame is one client request over the websocket.
type inboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

const (
	frameNewMessage = "new_message"
	frameLeave      = "leave"
)

// session binds one websocket connection to at most one room
// membership. It carries the connection context explicitly instead of
// reading ambient request state: session id, room code and remote
// address travel with it into every handler.
type session struct {
	roomCode string
	member   *domain.Member
	conn     *websocket.Conn
	rooms    service.RoomInteractor
	log      *slog.Logger

	closeOnce sync.Once
}

func newSession(roomCode string, member *domain.Member, conn *websocket.Conn, rooms service.RoomInteractor, log *slog.Logger) *session {
	return &session{
		roomCode: roomCode,
		member:   member,
		conn:     conn,
		rooms:    rooms,
		log: log.With(
			slog.String("room_code", roomCode),
			slog.String("session_id", member.SessionID),
			slog.String("remote_addr", member.Addr),
		),
	}
}

// writePump drains the member's event channel onto the socket. It owns
// all writes to the connection and closes it when delivery ends, either
// because the member left or because a write failed.
func (s *session) writePump() {
	defer s.conn.Close()

	for event := range s.member.Events {
		if err := s.conn.WriteJSON(event); err != nil {
			s.log.Debug("write failed, dropping session", sl.Err(err))
			s.close()
			return
		}
	}
}

// readLoop processes inbound frames until the transport closes or the
// client leaves. Request-scoped errors are answered with an error event
// to this session only and never end the loop.
func (s *session) readLoop() {
	defer s.close()

	for {
		var frame inboundFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case frameNewMessage:
			err := s.rooms.Post(context.Background(), s.roomCode, s.member.SessionID, frame.Message)
			if err != nil {
				s.member.EnqueueEvent(domain.ErrorEvent(errorReason(err)))
			}
		case frameLeave:
			return
		default:
			s.member.EnqueueEvent(domain.ErrorEvent("unsupported frame type"))
		}
	}
}

// reject reports a join-time failure to the client and tears the
// session down before it ever became a member.
func (s *session) reject(err error) {
	s.log.Info("join rejected", sl.Err(err))
	s.member.EnqueueEvent(domain.ErrorEvent(errorReason(err)))
	s.member.CloseEvents()
}

// close runs the session's cleanup exactly once, driving the room leave
// transition. Transport close, an explicit leave frame and a failed
// write all funnel into it.
func (s *session) close() {
	s.closeOnce.Do(func() {
		if err := s.rooms.Leave(context.Background(), s.roomCode, s.member.SessionID); err != nil {
			s.log.Error("leave failed", sl.Err(err))
		}
		s.member.CloseEvents()
	})
}
