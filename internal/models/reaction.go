package models

import "time"

// Reaction is one actor's emoji reaction to a message. An actor holds at most
// one reaction per emoji per message; re-sending the same emoji removes it.
type Reaction struct {
	MessageID int64     `db:"message_id" json:"message_id"`
	ActorID   int64     `db:"actor_id" json:"actor_id"`
	Emoji     string    `db:"emoji" json:"emoji"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReactionGroup is the aggregated view of one emoji on one message.
type ReactionGroup struct {
	Emoji   string  `json:"emoji"`
	Count   int     `json:"count"`
	Actors  []int64 `json:"actors"`
	Reacted bool    `json:"reacted"`
}

// GroupReactions folds raw reaction rows into per-emoji groups, marking the
// groups the given actor participates in. Group order follows first
// appearance in the input.
func GroupReactions(reactions []Reaction, actorID int64) []ReactionGroup {
	index := map[string]int{}
	groups := []ReactionGroup{}
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, ReactionGroup{Emoji: r.Emoji})
		}
		groups[i].Count++
		groups[i].Actors = append(groups[i].Actors, r.ActorID)
		if r.ActorID == actorID {
			groups[i].Reacted = true
		}
	}
	return groups
}
