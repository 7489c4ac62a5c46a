package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"talent-chat/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotSender       = errors.New("only the sender may delete a message")
)

// MessageRepository defines non-monetary interactions with messages.
// Balance-changing operations (paid send, unlock) live on LedgerRepository.
type MessageRepository interface {
	GetMessage(ctx context.Context, messageID int64) (models.Message, error)
	ListMessagesBefore(ctx context.Context, conversationID, beforeID int64, limit int) ([]models.Message, bool, error)
	SoftDeleteMessage(ctx context.Context, messageID, senderID int64) error
	CreateSystemMessage(ctx context.Context, conversationID, senderID int64, content string) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_id, content, media_url, media_type, media_price, media_duration, is_system, deleted_at, created_at`

// GetMessage retrieves a single message with its viewed-by set.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, err
	}
	if err := r.db.SelectContext(ctx, &msg.ViewedBy, `SELECT actor_id FROM message_views WHERE message_id=$1`, messageID); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessagesBefore returns up to limit messages of a conversation in
// ascending created_at order. A non-zero beforeID restricts the page to
// messages strictly older than that message, so repeated loads with the
// oldest loaded id as cursor never produce gaps or duplicates. A cursor
// that belongs to another conversation matches nothing.
func (r *MessageRepo) ListMessagesBefore(ctx context.Context, conversationID, beforeID int64, limit int) ([]models.Message, bool, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + messageColumns + ` FROM messages WHERE conversation_id=$1`
	args := []interface{}{conversationID}
	if beforeID > 0 {
		query += ` AND (created_at, id) < (SELECT created_at, id FROM messages WHERE id=$2 AND conversation_id=$1)`
		args = append(args, beforeID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + strconv.Itoa(limit+1)

	var page []models.Message
	if err := r.db.SelectContext(ctx, &page, query, args...); err != nil {
		return nil, false, err
	}

	hasMore := len(page) > limit
	if hasMore {
		page = page[:limit]
	}

	// Reverse into ascending order for rendering.
	msgs := make([]models.Message, len(page))
	for i, m := range page {
		msgs[len(page)-1-i] = m
	}

	if err := r.attachViews(ctx, msgs); err != nil {
		return nil, false, err
	}
	return msgs, hasMore, nil
}

func (r *MessageRepo) attachViews(ctx context.Context, msgs []models.Message) error {
	ids := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		if m.MediaPrice > 0 {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT message_id, actor_id FROM message_views WHERE message_id = ANY($1)`, pq.Int64Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	viewers := map[int64][]int64{}
	for rows.Next() {
		var messageID, actorID int64
		if err := rows.Scan(&messageID, &actorID); err != nil {
			return err
		}
		viewers[messageID] = append(viewers[messageID], actorID)
	}
	for i := range msgs {
		msgs[i].ViewedBy = viewers[msgs[i].ID]
	}
	return rows.Err()
}

// SoftDeleteMessage tombstones a message. Only the sender may delete; the row
// survives so clients render a placeholder instead of a gap.
func (r *MessageRepo) SoftDeleteMessage(ctx context.Context, messageID, senderID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET deleted_at = NOW() WHERE id=$1 AND sender_id=$2 AND deleted_at IS NULL`, messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1 AND deleted_at IS NULL)`, messageID); err != nil {
			return err
		}
		if exists {
			return ErrNotSender
		}
		return ErrMessageNotFound
	}
	return nil
}

// CreateSystemMessage inserts a free system message, e.g. a tip notice.
func (r *MessageRepo) CreateSystemMessage(ctx context.Context, conversationID, senderID int64, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO messages (conversation_id, sender_id, content, is_system) VALUES ($1, $2, $3, TRUE)
         RETURNING `+messageColumns,
		conversationID, senderID, content)
	return msg, err
}
