package domain

// Event types pushed to connected sessions.
const (
	EventUpdate    = "update"
	EventUserJoin  = "user_join"
	EventUserLeave = "user_leave"
	EventError     = "error"
)

// Event is one frame pushed to a session over its transport. Within a
// room, events are observed in the same total order by every member.
type Event struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func UpdateEvent(username, message string) Event {
	return Event{Type: EventUpdate, Username: username, Message: message}
}

func UserJoinEvent(username string) Event {
	return Event{Type: EventUserJoin, Username: username}
}

func UserLeaveEvent(username string) Event {
	return Event{Type: EventUserLeave, Username: username}
}

func ErrorEvent(reason string) Event {
	return Event{Type: EventError, Reason: reason}
}
