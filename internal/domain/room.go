package domain

import (
	"sort"
	"sync"
	"time"
)

// SystemName is the display name of the synthetic member that authors
// room announcements. Validation rejects it for real users.
const SystemName = "System"

// Room is an isolated chat channel identified by an opaque code. It owns
// its member set and message history. Every mutation of a room happens
// while holding Mutex; different rooms proceed fully in parallel.
type Room struct {
	Mutex     sync.RWMutex
	Code      string
	Members   map[string]*Member
	History   []*Message
	CreatedAt time.Time

	system  *Member
	removed bool
}

// NewRoom constructs an empty room for the given code.
func NewRoom(code string) *Room {
	return &Room{
		Code:      code,
		Members:   make(map[string]*Member),
		CreatedAt: time.Now().UTC(),
	}
}

// System returns the room's announcement identity, creating it lazily.
// At most one exists per room. Caller must hold Mutex.
func (r *Room) System() *Member {
	if r.system == nil {
		r.system = NewSystemMember()
	}
	return r.system
}

// MemberByName looks up a present member by display name. The system
// identity is never returned. Caller must hold Mutex.
func (r *Room) MemberByName(name string) *Member {
	for _, m := range r.Members {
		if m.DisplayName == name {
			return m
		}
	}
	return nil
}

// Roster returns the display names of all present members sorted for a
// deterministic presence listing. Caller must hold Mutex.
func (r *Room) Roster() []string {
	names := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		names = append(names, m.DisplayName)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the room has no present members, which makes it
// eligible for removal. Caller must hold Mutex.
func (r *Room) Empty() bool {
	return len(r.Members) == 0
}

// MarkRemoved flags the room as destroyed. A caller that resolved the
// room before its removal and only then acquired Mutex must treat a
// removed room as gone. Caller must hold Mutex.
func (r *Room) MarkRemoved() {
	r.removed = true
}

// Removed reports whether the room was destroyed. Caller must hold
// Mutex.
func (r *Room) Removed() bool {
	return r.removed
}
