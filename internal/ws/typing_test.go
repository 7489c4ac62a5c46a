package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypingTrackerExpiresEntries(t *testing.T) {
	tracker := NewTypingTracker(4 * time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	tracker.Touch(5, 1, "sam")
	require.Len(t, tracker.Active(5), 1)

	now = now.Add(3 * time.Second)
	require.Len(t, tracker.Active(5), 1, "entry within ttl must survive")

	now = now.Add(2 * time.Second)
	assert.Empty(t, tracker.Active(5), "entry past ttl must expire")
}

func TestTypingTrackerRefreshExtendsExpiry(t *testing.T) {
	tracker := NewTypingTracker(4 * time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	tracker.Touch(5, 1, "sam")
	now = now.Add(3 * time.Second)
	tracker.Touch(5, 1, "sam")
	now = now.Add(3 * time.Second)

	active := tracker.Active(5)
	require.Len(t, active, 1)
	assert.Equal(t, "sam", active[0].ActorName)
}

func TestTypingTrackerClear(t *testing.T) {
	tracker := NewTypingTracker(4 * time.Second)

	tracker.Touch(5, 1, "sam")
	tracker.Touch(5, 2, "vera")
	tracker.Clear(5, 1)

	active := tracker.Active(5)
	require.Len(t, active, 1)
	assert.Equal(t, int64(2), active[0].ActorID)
}

func TestTypingTrackerConversationsIsolated(t *testing.T) {
	tracker := NewTypingTracker(4 * time.Second)

	tracker.Touch(5, 1, "sam")
	assert.Empty(t, tracker.Active(6))
}
