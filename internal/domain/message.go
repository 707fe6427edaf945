package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry of a room's history. Immutable once created; the
// author is captured by session id with a display-name snapshot, never a
// live member pointer.
type Message struct {
	ID         uuid.UUID
	RoomCode   string
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}

// NewMessage records content authored by author in the given room.
func NewMessage(roomCode string, author *Member, content string) *Message {
	msg := &Message{
		ID:        uuid.New(),
		RoomCode:  roomCode,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if author != nil {
		msg.AuthorID = author.SessionID
		msg.AuthorName = author.DisplayName
	}
	return msg
}
