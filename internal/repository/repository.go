package repository

import (
	"context"

	"github.com/immxrtalbeast/chatrooms/internal/domain"
)

// RoomRepository persists rooms. The core functions identically on the
// in-memory implementation; the gorm one adds durability across
// restarts.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByCode(ctx context.Context, code string) (*domain.Room, error)
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]*domain.Room, error)
}

// MessageRepository persists room history in insertion order.
type MessageRepository interface {
	Save(ctx context.Context, msg *domain.Message) error
	ListByRoom(ctx context.Context, code string) ([]*domain.Message, error)
	DeleteByRoom(ctx context.Context, code string) error
}
