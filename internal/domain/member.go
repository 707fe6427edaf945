package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const eventBufferSize = 64

// Member is a connection's identity inside one room: the session binding
// plus the validated display name. It is exclusively owned by its room
// and destroyed when the connection leaves or disconnects.
type Member struct {
	SessionID   string
	DisplayName string
	Addr        string
	JoinedAt    time.Time
	IsSystem    bool

	// Events carries outbound events to the owning session's write pump.
	// Nil for the system identity, which receives nothing.
	Events chan Event

	closeOnce sync.Once
}

func NewMember(sessionID, displayName, addr string) *Member {
	return &Member{
		SessionID:   sessionID,
		DisplayName: displayName,
		Addr:        addr,
		JoinedAt:    time.Now().UTC(),
		Events:      make(chan Event, eventBufferSize),
	}
}

func NewSystemMember() *Member {
	return &Member{
		SessionID:   uuid.New().String(),
		DisplayName: SystemName,
		Addr:        "system",
		JoinedAt:    time.Now().UTC(),
		IsSystem:    true,
	}
}

// EnqueueEvent hands event to the member's session without blocking. It
// reports false when the buffer is full; the caller treats that as a
// failed delivery and drives this member's disconnect path.
func (m *Member) EnqueueEvent(event Event) bool {
	if m.Events == nil {
		return true
	}
	select {
	case m.Events <- event:
		return true
	default:
		return false
	}
}

// CloseEvents ends event delivery. Safe to call more than once.
func (m *Member) CloseEvents() {
	m.closeOnce.Do(func() {
		if m.Events != nil {
			close(m.Events)
		}
	})
}
