package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func messageAt(id, senderID int64, at time.Time) Message {
	return Message{ID: id, SenderID: senderID, CreatedAt: at}
}

func TestSeenMarkerAttachesToLatestOwnMessageBeforeCursor(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		messageAt(1, 1, base),
		messageAt(2, 2, base.Add(1*time.Minute)),
		messageAt(3, 1, base.Add(2*time.Minute)),
		messageAt(4, 1, base.Add(10*time.Minute)),
	}

	marker := SeenMarkerID(msgs, 1, base.Add(5*time.Minute))
	assert.Equal(t, int64(3), marker)
}

func TestSeenMarkerMovesForwardAsCursorAdvances(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		messageAt(1, 1, base),
		messageAt(2, 1, base.Add(2*time.Minute)),
		messageAt(3, 1, base.Add(4*time.Minute)),
	}

	first := SeenMarkerID(msgs, 1, base.Add(1*time.Minute))
	second := SeenMarkerID(msgs, 1, base.Add(3*time.Minute))
	third := SeenMarkerID(msgs, 1, base.Add(10*time.Minute))

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(3), third)
	assert.LessOrEqual(t, first, second)
	assert.LessOrEqual(t, second, third)
}

func TestSeenMarkerIgnoresPartnerMessages(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		messageAt(1, 2, base),
		messageAt(2, 2, base.Add(time.Minute)),
	}

	assert.Equal(t, int64(0), SeenMarkerID(msgs, 1, base.Add(time.Hour)))
}

func TestSeenMarkerZeroWhenCursorBeforeEverything(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{messageAt(1, 1, base)}

	assert.Equal(t, int64(0), SeenMarkerID(msgs, 1, base.Add(-time.Minute)))
}

func TestSeenMarkerCursorExactlyOnMessage(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{messageAt(1, 1, base)}

	assert.Equal(t, int64(1), SeenMarkerID(msgs, 1, base))
}
