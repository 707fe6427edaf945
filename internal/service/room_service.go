package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/chatrooms/internal/domain"
	"github.com/immxrtalbeast/chatrooms/internal/ratelimit"
	"github.com/immxrtalbeast/chatrooms/internal/repository"
	"github.com/immxrtalbeast/chatrooms/internal/validate"
	"github.com/immxrtalbeast/chatrooms/lib/logger/sl"
)

// RoomService owns the room registry and serializes every mutation of a
// room under that room's mutex. Events are enqueued to member channels
// before the mutex is released, so all members of a room observe one
// total order; socket writes happen in each session's write pump.
type RoomService struct {
	rooms    repository.RoomRepository
	messages repository.MessageRepository
	limiter  *ratelimit.FixedWindow
	log      *slog.Logger

	mu          sync.RWMutex
	activeRooms map[string]*domain.Room
}

func NewRoomService(rooms repository.RoomRepository, messages repository.MessageRepository, limiter *ratelimit.FixedWindow, log *slog.Logger) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	if limiter == nil {
		limiter = ratelimit.NewFixedWindow(ratelimit.DefaultWindow, ratelimit.DefaultLimit)
	}
	return &RoomService{
		rooms:       rooms,
		messages:    messages,
		limiter:     limiter,
		log:         log,
		activeRooms: make(map[string]*domain.Room),
	}
}

// CreateRoom registers an empty room under a fresh opaque code.
func (s *RoomService) CreateRoom(ctx context.Context) (*domain.Room, error) {
	const op = "service.room.create"

	room := domain.NewRoom(uuid.New().String())
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.activeRooms[room.Code] = room
	s.mu.Unlock()

	s.log.Info("room created", slog.String("room_code", room.Code))
	return room, nil
}

// GetRoom resolves a code to its room, reading the room and its history
// through the repository when it is not active yet. Rooms stay
// resolvable after the last member leaves; only RemoveRoomIfEmpty
// destroys them.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	if room := s.getActiveRoom(code); room != nil {
		return room, nil
	}

	roomFromDB, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	history, err := s.messages.ListByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	roomFromDB.History = history

	return s.activateRoom(roomFromDB), nil
}

// Join adds member to the room under member.DisplayName, which carries
// the raw requested name and is replaced by its validated form. The
// join is rejected outright on an invalid or taken name; there is no
// silent Guest fallback. On success the joiner receives the pre-join
// history, everyone receives the join announcement, and the sorted
// roster is announced to all sessions including the joiner.
func (s *RoomService) Join(ctx context.Context, code string, member *domain.Member) error {
	const op = "service.room.join"
	log := s.log.With(slog.String("op", op), slog.String("room_code", code))

	if member == nil {
		return errors.New("member is required")
	}

	name, err := validate.Username(member.DisplayName)
	if err != nil {
		return err
	}

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		log.Info("join rejected", sl.Err(err))
		return err
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	// The room may have been destroyed between resolving it and winning
	// its mutex; joining the orphaned object would strand the session.
	if room.Removed() {
		log.Info("join rejected", sl.Err(repository.ErrRoomNotFound))
		return repository.ErrRoomNotFound
	}

	if room.MemberByName(name) != nil {
		log.Info("join rejected", slog.String("name", name), sl.Err(ErrNameTaken))
		return ErrNameTaken
	}

	// Replay the history as it was before this join to the joiner only.
	// The join announcement below reaches the joiner as a live event, so
	// it is seen exactly once.
	for _, msg := range room.History {
		s.deliver(room, member, domain.UpdateEvent(msg.AuthorName, msg.Content))
	}

	member.DisplayName = name
	room.Members[member.SessionID] = member

	s.appendSystemMessage(ctx, room, name+" has joined the chat")

	for _, username := range room.Roster() {
		s.broadcast(room, domain.UserJoinEvent(username))
	}

	log.Info("member joined",
		slog.String("session_id", member.SessionID),
		slog.String("name", name),
		slog.Int("members", len(room.Members)),
	)
	return nil
}

// Post validates content, applies the rate limit keyed by session id,
// appends the message to the room history and broadcasts it to every
// present member including the sender.
func (s *RoomService) Post(ctx context.Context, code string, sessionID string, content string) error {
	const op = "service.room.post"

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return err
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if room.Removed() {
		return repository.ErrRoomNotFound
	}

	member, ok := room.Members[sessionID]
	if !ok {
		return ErrNotJoined
	}

	text, err := validate.Message(content)
	if err != nil {
		return err
	}

	if !s.limiter.Allow(sessionID) {
		s.log.Debug("post rate limited",
			slog.String("room_code", code),
			slog.String("session_id", sessionID),
		)
		return ErrRateLimited
	}

	msg := domain.NewMessage(code, member, text)
	if err := s.messages.Save(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	room.History = append(room.History, msg)
	s.broadcast(room, domain.UpdateEvent(member.DisplayName, text))
	return nil
}

// Leave removes the session's member from the room and announces it to
// the remaining members. Calling it for a session that already left is
// a no-op, so transport close and explicit leave may both run it.
func (s *RoomService) Leave(ctx context.Context, code string, sessionID string) error {
	const op = "service.room.leave"

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil
		}
		return err
	}

	room.Mutex.Lock()
	member, ok := room.Members[sessionID]
	if !ok {
		room.Mutex.Unlock()
		return nil
	}

	delete(room.Members, sessionID)
	s.limiter.Forget(sessionID)

	s.broadcast(room, domain.UserLeaveEvent(member.DisplayName))
	s.appendSystemMessage(ctx, room, member.DisplayName+" has disconnected")
	empty := room.Empty()
	room.Mutex.Unlock()

	member.CloseEvents()

	s.log.Info("member left",
		slog.String("op", op),
		slog.String("room_code", code),
		slog.String("session_id", sessionID),
		slog.String("name", member.DisplayName),
		slog.Bool("room_empty", empty),
	)
	return nil
}

// ListMembers returns the sorted roster, system identity excluded.
func (s *RoomService) ListMembers(ctx context.Context, code string) ([]string, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	room.Mutex.RLock()
	defer room.Mutex.RUnlock()

	if room.Removed() {
		return nil, repository.ErrRoomNotFound
	}
	return room.Roster(), nil
}

// History returns a snapshot of the room's ordered message history.
func (s *RoomService) History(ctx context.Context, code string) ([]*domain.Message, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	room.Mutex.RLock()
	defer room.Mutex.RUnlock()

	if room.Removed() {
		return nil, repository.ErrRoomNotFound
	}

	history := make([]*domain.Message, len(room.History))
	copy(history, room.History)
	return history, nil
}

// RemoveRoomIfEmpty destroys the room and its history when it has no
// members. It reports false without touching the room otherwise.
func (s *RoomService) RemoveRoomIfEmpty(ctx context.Context, code string) (bool, error) {
	const op = "service.room.removeIfEmpty"

	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return false, err
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if room.Removed() {
		return false, repository.ErrRoomNotFound
	}
	if !room.Empty() {
		return false, nil
	}

	room.MarkRemoved()
	s.mu.Lock()
	delete(s.activeRooms, code)
	s.mu.Unlock()

	if err := s.messages.DeleteByRoom(ctx, code); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.rooms.Delete(ctx, code); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("empty room removed", slog.String("room_code", code))
	return true, nil
}

// appendSystemMessage records an announcement authored by the room's
// system identity and broadcasts it. Persistence failures for
// announcements are logged and skipped rather than failing the
// membership transition that produced them. Caller must hold the room
// mutex.
func (s *RoomService) appendSystemMessage(ctx context.Context, room *domain.Room, text string) {
	msg := domain.NewMessage(room.Code, room.System(), text)
	if err := s.messages.Save(ctx, msg); err != nil {
		s.log.Error("failed to save system message",
			slog.String("room_code", room.Code), sl.Err(err))
	}
	room.History = append(room.History, msg)
	s.broadcast(room, domain.UpdateEvent(domain.SystemName, text))
}

// broadcast enqueues event to every present member. Caller must hold
// the room mutex; enqueueing is a non-blocking channel send, so no
// socket I/O runs under the lock.
func (s *RoomService) broadcast(room *domain.Room, event domain.Event) {
	for _, member := range room.Members {
		s.deliver(room, member, event)
	}
}

// deliver enqueues event for one member. A full buffer counts as a
// failed delivery: the event is dropped and the member's disconnect
// path runs asynchronously, never an error back to the broadcaster.
func (s *RoomService) deliver(room *domain.Room, member *domain.Member, event domain.Event) {
	if member.EnqueueEvent(event) {
		return
	}

	s.log.Warn("dropping event for slow session",
		slog.String("room_code", room.Code),
		slog.String("session_id", member.SessionID),
		slog.String("type", event.Type),
	)
	go func() {
		_ = s.Leave(context.Background(), room.Code, member.SessionID)
	}()
}

func (s *RoomService) getActiveRoom(code string) *domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeRooms[code]
}

func (s *RoomService) activateRoom(room *domain.Room) *domain.Room {
	if room.Members == nil {
		room.Members = make(map[string]*domain.Member)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.activeRooms[room.Code]; existing != nil {
		return existing
	}

	s.activeRooms[room.Code] = room
	return room
}
