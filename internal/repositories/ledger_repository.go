package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"talent-chat/internal/models"
)

var ErrNotPayPerView = errors.New("message has no pay-per-view media")

// UnlockResult is the outcome of a pay-per-view unlock attempt.
type UnlockResult struct {
	MediaURL        string `json:"media_url"`
	AmountPaid      int64  `json:"amount_paid"`
	AlreadyUnlocked bool   `json:"already_unlocked"`
}

// LedgerRepository owns every coin balance movement. Each operation runs in a
// single transaction so a partial debit can never be observed, and each writes
// a ledger entry row.
type LedgerRepository interface {
	Balance(ctx context.Context, actorID int64) (int64, error)
	SendPaidMessage(ctx context.Context, conversationID, senderID int64, draft models.MessageDraft, cost int64) (models.Message, error)
	UnlockMessage(ctx context.Context, messageID, viewerID int64) (UnlockResult, error)
	Tip(ctx context.Context, fromID, toID, amount int64) (int64, error)
}

// LedgerRepo is a sqlx implementation of LedgerRepository.
type LedgerRepo struct {
	db *sqlx.DB
}

// NewLedgerRepo constructs a LedgerRepo.
func NewLedgerRepo(db *sqlx.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Balance returns the authoritative coin balance for an actor.
func (r *LedgerRepo) Balance(ctx context.Context, actorID int64) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT coin_balance FROM actors WHERE id=$1`, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrActorNotFound
	}
	return balance, err
}

// SendPaidMessage stores a message and debits the sender in one transaction.
// The message row only exists if the debit succeeded.
func (r *LedgerRepo) SendPaidMessage(ctx context.Context, conversationID, senderID int64, draft models.MessageDraft, cost int64) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	if cost > 0 {
		if err := debit(ctx, tx, senderID, cost); err != nil {
			return models.Message{}, err
		}
	}

	var msg models.Message
	err = tx.GetContext(ctx, &msg,
		`INSERT INTO messages (conversation_id, sender_id, content, media_url, media_type, media_price, media_duration)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+messageColumns,
		conversationID, senderID, draft.Content, draft.MediaURL, draft.MediaType, draft.MediaPrice, draft.MediaDuration)
	if err != nil {
		return models.Message{}, err
	}

	if cost > 0 {
		if err := writeEntry(ctx, tx, senderID, -cost, models.LedgerMessageCost, &msg.ID, nil); err != nil {
			return models.Message{}, err
		}
	}

	return msg, tx.Commit()
}

// UnlockMessage grants the viewer access to pay-per-view media, moving the
// price from viewer to sender. Idempotent per (message, viewer): a repeated
// call reports AlreadyUnlocked and charges nothing. Senders always have
// access and are never charged.
func (r *LedgerRepo) UnlockMessage(ctx context.Context, messageID, viewerID int64) (UnlockResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return UnlockResult{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	err = tx.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return UnlockResult{}, ErrMessageNotFound
	}
	if err != nil {
		return UnlockResult{}, err
	}
	if !msg.HasLockedMedia() {
		return UnlockResult{}, ErrNotPayPerView
	}
	if msg.SenderID == viewerID {
		return UnlockResult{MediaURL: *msg.MediaURL, AlreadyUnlocked: true}, tx.Commit()
	}

	var viewed bool
	if err := tx.GetContext(ctx, &viewed, `SELECT EXISTS(SELECT 1 FROM message_views WHERE message_id=$1 AND actor_id=$2)`, messageID, viewerID); err != nil {
		return UnlockResult{}, err
	}
	if viewed {
		return UnlockResult{MediaURL: *msg.MediaURL, AlreadyUnlocked: true}, tx.Commit()
	}

	if err := debit(ctx, tx, viewerID, msg.MediaPrice); err != nil {
		return UnlockResult{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE actors SET coin_balance = coin_balance + $1 WHERE id=$2`, msg.MediaPrice, msg.SenderID); err != nil {
		return UnlockResult{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO message_views (message_id, actor_id, amount_paid) VALUES ($1, $2, $3)`, messageID, viewerID, msg.MediaPrice); err != nil {
		return UnlockResult{}, err
	}
	if err := writeEntry(ctx, tx, viewerID, -msg.MediaPrice, models.LedgerUnlockPaid, &messageID, &msg.SenderID); err != nil {
		return UnlockResult{}, err
	}
	if err := writeEntry(ctx, tx, msg.SenderID, msg.MediaPrice, models.LedgerUnlockProceeds, &messageID, &viewerID); err != nil {
		return UnlockResult{}, err
	}

	return UnlockResult{MediaURL: *msg.MediaURL, AmountPaid: msg.MediaPrice}, tx.Commit()
}

// Tip transfers coins between two actors and returns the sender's new
// balance.
func (r *LedgerRepo) Tip(ctx context.Context, fromID, toID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("tip amount must be positive")
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := debit(ctx, tx, fromID, amount); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE actors SET coin_balance = coin_balance + $1 WHERE id=$2`, amount, toID); err != nil {
		return 0, err
	}
	if err := writeEntry(ctx, tx, fromID, -amount, models.LedgerTipSent, nil, &toID); err != nil {
		return 0, err
	}
	if err := writeEntry(ctx, tx, toID, amount, models.LedgerTipReceived, nil, &fromID); err != nil {
		return 0, err
	}

	var newBalance int64
	if err := tx.GetContext(ctx, &newBalance, `SELECT coin_balance FROM actors WHERE id=$1`, fromID); err != nil {
		return 0, err
	}
	return newBalance, tx.Commit()
}

// debit locks the payer row, verifies funds and subtracts the amount.
func debit(ctx context.Context, tx *sqlx.Tx, actorID, amount int64) error {
	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT coin_balance FROM actors WHERE id=$1 FOR UPDATE`, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrActorNotFound
	}
	if err != nil {
		return err
	}
	if balance < amount {
		return &models.InsufficientFundsError{Required: amount, Balance: balance}
	}
	_, err = tx.ExecContext(ctx, `UPDATE actors SET coin_balance = coin_balance - $1 WHERE id=$2`, amount, actorID)
	return err
}

func writeEntry(ctx context.Context, tx *sqlx.Tx, actorID, delta int64, kind models.LedgerKind, messageID, counterpartyID *int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (actor_id, delta, kind, message_id, counterparty_id) VALUES ($1, $2, $3, $4, $5)`,
		actorID, delta, kind, messageID, counterpartyID)
	return err
}
