package converter

import (
	"time"

	"github.com/immxrtalbeast/chatrooms/internal/domain"
)

type RoomResponse struct {
	Code      string    `json:"code"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageResponse struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func RoomToApi(r *domain.Room) *RoomResponse {
	r.Mutex.RLock()
	members := r.Roster()
	r.Mutex.RUnlock()

	return &RoomResponse{
		Code:      r.Code,
		Members:   members,
		CreatedAt: r.CreatedAt,
	}
}

func MessagesToApi(messages []*domain.Message) []MessageResponse {
	result := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, MessageResponse{
			Username:  msg.AuthorName,
			Message:   msg.Content,
			Timestamp: msg.CreatedAt,
		})
	}
	return result
}
