package models

import "time"

// SeenMarkerID returns the id of the latest message authored by actorID with
// created_at at or before the partner's read cursor, i.e. the message the
// "seen" marker attaches to. Returns 0 when no own message qualifies.
//
// Messages are expected in ascending created_at order; the fold is recomputed
// from scratch on every cursor or list change, never cached.
func SeenMarkerID(messages []Message, actorID int64, lastReadAt time.Time) int64 {
	var marker int64
	for _, m := range messages {
		if m.SenderID != actorID {
			continue
		}
		if m.CreatedAt.After(lastReadAt) {
			break
		}
		marker = m.ID
	}
	return marker
}
