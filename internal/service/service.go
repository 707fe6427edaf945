package service

import (
	"context"
	"errors"

	"github.com/immxrtalbeast/chatrooms/internal/domain"
)

var (
	// ErrNameTaken is returned when a join requests a display name that
	// another member of the room already holds. The caller retries with
	// a different name; identity slots are never reused.
	ErrNameTaken = errors.New("display name already taken")
	// ErrNotJoined is returned for a post by a session that is not a
	// present member of the room.
	ErrNotJoined = errors.New("session has not joined the room")
	// ErrRateLimited is returned when a post is dropped by the rate
	// limiter. Transient; retryable after the window elapses.
	ErrRateLimited = errors.New("rate limit exceeded")
)

type RoomInteractor interface {
	CreateRoom(ctx context.Context) (*domain.Room, error)
	GetRoom(ctx context.Context, code string) (*domain.Room, error)
	Join(ctx context.Context, code string, member *domain.Member) error
	Post(ctx context.Context, code string, sessionID string, content string) error
	Leave(ctx context.Context, code string, sessionID string) error
	ListMembers(ctx context.Context, code string) ([]string, error)
	History(ctx context.Context, code string) ([]*domain.Message, error)
	RemoveRoomIfEmpty(ctx context.Context, code string) (bool, error)
}
