package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"talent-chat/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	CreateOrGetConversation(ctx context.Context, actorID, partnerID int64, kind models.ConversationKind, gigID *int64) (models.Conversation, error)
	GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, actorID int64) (bool, error)
	ListConversations(ctx context.Context, actorID int64) ([]models.ConversationSummary, error)
	MarkRead(ctx context.Context, conversationID, actorID int64, at time.Time) (models.ReadCursor, error)
	GetCursors(ctx context.Context, conversationID int64) ([]models.ReadCursor, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateOrGetConversation creates a thread between two actors if it does not
// already exist. Participants are stored in sorted order so the pair is unique
// regardless of who reached out first.
func (r *ConversationRepo) CreateOrGetConversation(ctx context.Context, actorID, partnerID int64, kind models.ConversationKind, gigID *int64) (models.Conversation, error) {
	if actorID == partnerID {
		return models.Conversation{}, errors.New("cannot start conversation with self")
	}
	a, b := actorID, partnerID
	if a > b {
		a, b = b, a
	}

	var conv models.Conversation
	query := `SELECT id, kind, actor_a_id, actor_b_id, gig_id, created_at FROM conversations WHERE actor_a_id=$1 AND actor_b_id=$2`
	err := r.db.GetContext(ctx, &conv, query, a, b)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	err = r.db.GetContext(ctx, &conv,
		`INSERT INTO conversations (kind, actor_a_id, actor_b_id, gig_id) VALUES ($1, $2, $3, $4)
         ON CONFLICT (actor_a_id, actor_b_id) DO UPDATE SET actor_a_id = EXCLUDED.actor_a_id
         RETURNING id, kind, actor_a_id, actor_b_id, gig_id, created_at`,
		kind, a, b, gigID)
	return conv, err
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, kind, actor_a_id, actor_b_id, gig_id, created_at FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// IsParticipant checks whether an actor belongs to the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, actorID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1 AND (actor_a_id=$2 OR actor_b_id=$2))`, conversationID, actorID)
	return exists, err
}

// ListConversations returns the actor's threads, newest first.
func (r *ConversationRepo) ListConversations(ctx context.Context, actorID int64) ([]models.ConversationSummary, error) {
	query := `SELECT id, kind, actor_a_id, actor_b_id, gig_id, created_at FROM conversations
        WHERE actor_a_id=$1 OR actor_b_id=$1
        ORDER BY created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ConversationSummary
	for rows.Next() {
		var conv models.Conversation
		if err := rows.StructScan(&conv); err != nil {
			return nil, err
		}
		result = append(result, models.ConversationSummary{
			ConversationID: conv.ID,
			Kind:           conv.Kind,
			PartnerID:      conv.OtherParticipant(actorID),
			GigID:          conv.GigID,
			CreatedAt:      conv.CreatedAt,
		})
	}
	return result, rows.Err()
}

// MarkRead advances the actor's read cursor. The cursor moves forward only:
// an older timestamp leaves the stored value untouched.
func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID, actorID int64, at time.Time) (models.ReadCursor, error) {
	var cursor models.ReadCursor
	err := r.db.GetContext(ctx, &cursor,
		`INSERT INTO read_cursors (conversation_id, actor_id, last_read_at) VALUES ($1, $2, $3)
         ON CONFLICT (conversation_id, actor_id) DO UPDATE SET last_read_at = GREATEST(read_cursors.last_read_at, EXCLUDED.last_read_at)
         RETURNING conversation_id, actor_id, last_read_at`,
		conversationID, actorID, at)
	return cursor, err
}

// GetCursors returns the read cursors of all conversation participants.
func (r *ConversationRepo) GetCursors(ctx context.Context, conversationID int64) ([]models.ReadCursor, error) {
	var cursors []models.ReadCursor
	err := r.db.SelectContext(ctx, &cursors, `SELECT conversation_id, actor_id, last_read_at FROM read_cursors WHERE conversation_id=$1`, conversationID)
	return cursors, err
}
