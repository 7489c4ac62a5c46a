package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"talent-chat/internal/models"
)

// ReactionRepository abstracts emoji reactions on messages.
type ReactionRepository interface {
	ToggleReaction(ctx context.Context, messageID, actorID int64, emoji string) (bool, error)
	ListForMessage(ctx context.Context, messageID int64) ([]models.Reaction, error)
	ListForMessages(ctx context.Context, messageIDs []int64) (map[int64][]models.Reaction, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// ToggleReaction adds the reaction if absent, removes it if present, and
// reports whether the actor now reacts with that emoji. The primary key on
// (message_id, actor_id, emoji) keeps concurrent toggles consistent.
func (r *ReactionRepo) ToggleReaction(ctx context.Context, messageID, actorID int64, emoji string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE message_id=$1 AND actor_id=$2 AND emoji=$3`, messageID, actorID, emoji)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reactions (message_id, actor_id, emoji) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		messageID, actorID, emoji)
	return err == nil, err
}

// ListForMessage returns the raw reaction rows of a single message.
func (r *ReactionRepo) ListForMessage(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.SelectContext(ctx, &reactions,
		`SELECT message_id, actor_id, emoji, created_at FROM reactions WHERE message_id=$1 ORDER BY created_at ASC`, messageID)
	return reactions, err
}

// ListForMessages returns reaction rows grouped by message id.
func (r *ReactionRepo) ListForMessages(ctx context.Context, messageIDs []int64) (map[int64][]models.Reaction, error) {
	result := map[int64][]models.Reaction{}
	if len(messageIDs) == 0 {
		return result, nil
	}
	var reactions []models.Reaction
	err := r.db.SelectContext(ctx, &reactions,
		`SELECT message_id, actor_id, emoji, created_at FROM reactions WHERE message_id = ANY($1) ORDER BY created_at ASC`,
		pq.Int64Array(messageIDs))
	if err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		result[reaction.MessageID] = append(result[reaction.MessageID], reaction)
	}
	return result, nil
}
