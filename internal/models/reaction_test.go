package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupReactionsAggregatesPerEmoji(t *testing.T) {
	rows := []Reaction{
		{MessageID: 1, ActorID: 1, Emoji: "👍"},
		{MessageID: 1, ActorID: 2, Emoji: "👍"},
		{MessageID: 1, ActorID: 2, Emoji: "🔥"},
	}

	groups := GroupReactions(rows, 1)

	require.Len(t, groups, 2)
	assert.Equal(t, "👍", groups[0].Emoji)
	assert.Equal(t, 2, groups[0].Count)
	assert.True(t, groups[0].Reacted)
	assert.Equal(t, "🔥", groups[1].Emoji)
	assert.Equal(t, 1, groups[1].Count)
	assert.False(t, groups[1].Reacted)
}

func TestGroupReactionsEmptyInput(t *testing.T) {
	assert.Empty(t, GroupReactions(nil, 1))
}

func TestGroupReactionsToggleRestoresPriorState(t *testing.T) {
	before := []Reaction{{MessageID: 1, ActorID: 2, Emoji: "👍"}}
	after := append([]Reaction{}, before...)
	after = append(after, Reaction{MessageID: 1, ActorID: 1, Emoji: "👍"})

	toggledOn := GroupReactions(after, 1)
	require.Len(t, toggledOn, 1)
	assert.Equal(t, 2, toggledOn[0].Count)
	assert.True(t, toggledOn[0].Reacted)

	// Toggling off reproduces the pre-toggle groups exactly, not a
	// decremented approximation.
	toggledOff := GroupReactions(before, 1)
	require.Len(t, toggledOff, 1)
	assert.Equal(t, 1, toggledOff[0].Count)
	assert.False(t, toggledOff[0].Reacted)
	assert.Equal(t, GroupReactions(before, 1), toggledOff)
}
