package ws

import (
	"sync"
	"time"

	"talent-chat/internal/models"
)

// DefaultTypingTTL is how long a typing entry survives without a refresh.
// Clients re-send typing frames while composing; a tab closed mid-keystroke
// never sends a stop, so entries must expire on their own.
const DefaultTypingTTL = 4 * time.Second

type typingEntry struct {
	name      string
	expiresAt time.Time
}

// TypingTracker holds the set of actors currently typing per conversation,
// expiring entries that are not refreshed within the TTL.
type TypingTracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[int64]map[int64]typingEntry
}

// NewTypingTracker builds a tracker; ttl <= 0 selects DefaultTypingTTL.
func NewTypingTracker(ttl time.Duration) *TypingTracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &TypingTracker{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int64]map[int64]typingEntry),
	}
}

// Touch records that the actor is typing, refreshing the expiry.
func (t *TypingTracker) Touch(conversationID, actorID int64, actorName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[conversationID]; !ok {
		t.entries[conversationID] = make(map[int64]typingEntry)
	}
	t.entries[conversationID][actorID] = typingEntry{
		name:      actorName,
		expiresAt: t.now().Add(t.ttl),
	}
}

// Clear drops the actor's typing state, e.g. on disconnect or send.
func (t *TypingTracker) Clear(conversationID, actorID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if actors, ok := t.entries[conversationID]; ok {
		delete(actors, actorID)
		if len(actors) == 0 {
			delete(t.entries, conversationID)
		}
	}
}

// Active returns the actors still typing in the conversation, pruning
// expired entries as a side effect.
func (t *TypingTracker) Active(conversationID int64) []models.TypingInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	actors, ok := t.entries[conversationID]
	if !ok {
		return nil
	}

	now := t.now()
	var active []models.TypingInfo
	for actorID, entry := range actors {
		if now.After(entry.expiresAt) {
			delete(actors, actorID)
			continue
		}
		active = append(active, models.TypingInfo{ActorID: actorID, ActorName: entry.name})
	}
	if len(actors) == 0 {
		delete(t.entries, conversationID)
	}
	return active
}
