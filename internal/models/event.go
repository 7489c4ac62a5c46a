package models

// ChatEvent is broadcasted through websockets to conversation members.
type ChatEvent struct {
	Type      string          `json:"type"`
	Message   *Message        `json:"message,omitempty"`
	MessageID int64           `json:"message_id,omitempty"`
	Reactions []ReactionGroup `json:"reactions,omitempty"`
	Cursor    *ReadCursor     `json:"cursor,omitempty"`
	Typing    *TypingInfo     `json:"typing,omitempty"`
}

// Event type values carried in ChatEvent.Type.
const (
	EventMessage        = "message"
	EventMessageDeleted = "message_deleted"
	EventReaction       = "reaction"
	EventCursor         = "cursor"
	EventTyping         = "typing"
)

// TypingInfo identifies the actor currently typing in a conversation.
type TypingInfo struct {
	ActorID   int64  `json:"actor_id"`
	ActorName string `json:"actor_name"`
}
