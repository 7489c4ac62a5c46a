package models

import "time"

// Message is a chat message. A non-zero MediaPrice makes the attachment
// pay-per-view: the media URL is withheld from every actor except the sender
// until that actor appears in the viewed-by set.
type Message struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID int64      `db:"conversation_id" json:"conversation_id"`
	SenderID       int64      `db:"sender_id" json:"sender_id"`
	Content        *string    `db:"content" json:"content"`
	MediaURL       *string    `db:"media_url" json:"media_url,omitempty"`
	MediaType      *string    `db:"media_type" json:"media_type,omitempty"`
	MediaPrice     int64      `db:"media_price" json:"media_price"`
	MediaDuration  *int       `db:"media_duration" json:"media_duration,omitempty"`
	System         bool       `db:"is_system" json:"system"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`

	// ViewedBy lists actors who have paid for the attachment. Loaded
	// alongside the row, not a column.
	ViewedBy []int64 `db:"-" json:"-"`

	// Locked is derived per viewer on the way out.
	Locked bool `db:"-" json:"locked"`
}

// HasLockedMedia reports whether the attachment is pay-per-view.
func (m Message) HasLockedMedia() bool {
	return m.MediaURL != nil && m.MediaPrice > 0
}

// ViewableBy reports whether viewerID may see the attachment URL.
// Senders always see their own media.
func (m Message) ViewableBy(viewerID int64) bool {
	if !m.HasLockedMedia() {
		return true
	}
	if m.SenderID == viewerID {
		return true
	}
	for _, id := range m.ViewedBy {
		if id == viewerID {
			return true
		}
	}
	return false
}

// RedactedFor returns a copy safe to hand to viewerID: locked media URLs are
// stripped, and soft-deleted messages are reduced to a tombstone.
func (m Message) RedactedFor(viewerID int64) Message {
	out := m
	out.ViewedBy = nil
	if m.DeletedAt != nil {
		out.Content = nil
		out.MediaURL = nil
		out.MediaType = nil
		out.MediaDuration = nil
		out.MediaPrice = 0
		return out
	}
	if !m.ViewableBy(viewerID) {
		out.MediaURL = nil
		out.Locked = true
	}
	return out
}

// MessageDraft carries the caller-supplied fields of an outgoing message.
type MessageDraft struct {
	Content       *string
	MediaURL      *string
	MediaType     *string
	MediaPrice    int64
	MediaDuration *int
}

// Empty reports whether the draft carries neither text nor media.
func (d MessageDraft) Empty() bool {
	return (d.Content == nil || *d.Content == "") && d.MediaURL == nil
}
