package models

import "time"

// ConversationKind distinguishes plain direct threads from gig-linked ones.
type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationGig    ConversationKind = "gig"
)

// Conversation is a persistent thread between exactly two actors.
// Conversations are created on first contact and never deleted.
type Conversation struct {
	ID        int64            `db:"id" json:"id"`
	Kind      ConversationKind `db:"kind" json:"kind"`
	ActorAID  int64            `db:"actor_a_id" json:"actor_a_id"`
	ActorBID  int64            `db:"actor_b_id" json:"actor_b_id"`
	GigID     *int64           `db:"gig_id" json:"gig_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// OtherParticipant returns the counterpart of actorID in the thread.
func (c Conversation) OtherParticipant(actorID int64) int64 {
	if c.ActorAID == actorID {
		return c.ActorBID
	}
	return c.ActorAID
}

// HasParticipant reports whether actorID belongs to the conversation.
func (c Conversation) HasParticipant(actorID int64) bool {
	return c.ActorAID == actorID || c.ActorBID == actorID
}

// ConversationSummary is the API-friendly view of a thread for one actor.
type ConversationSummary struct {
	ConversationID int64            `db:"id" json:"conversation_id"`
	Kind           ConversationKind `db:"kind" json:"kind"`
	PartnerID      int64            `json:"partner_id"`
	GigID          *int64           `json:"gig_id,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// ReadCursor marks the newest message an actor has seen in a conversation.
type ReadCursor struct {
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	ActorID        int64     `db:"actor_id" json:"actor_id"`
	LastReadAt     time.Time `db:"last_read_at" json:"last_read_at"`
}
