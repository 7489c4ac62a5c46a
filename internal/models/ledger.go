package models

import (
	"fmt"
	"time"
)

// LedgerKind tags a coin balance movement with its cause.
type LedgerKind string

const (
	LedgerMessageCost    LedgerKind = "message_cost"
	LedgerUnlockPaid     LedgerKind = "unlock_paid"
	LedgerUnlockProceeds LedgerKind = "unlock_proceeds"
	LedgerTipSent        LedgerKind = "tip_sent"
	LedgerTipReceived    LedgerKind = "tip_received"
)

// LedgerEntry records one coin balance movement. Balances are only ever
// adjusted through ledger operations, each of which writes an entry.
type LedgerEntry struct {
	ID             int64      `db:"id" json:"id"`
	ActorID        int64      `db:"actor_id" json:"actor_id"`
	Delta          int64      `db:"delta" json:"delta"`
	Kind           LedgerKind `db:"kind" json:"kind"`
	MessageID      *int64     `db:"message_id" json:"message_id,omitempty"`
	CounterpartyID *int64     `db:"counterparty_id" json:"counterparty_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// InsufficientFundsError is returned when a debit would take a balance below
// zero. Handlers translate it to HTTP 402 with the exact amounts.
type InsufficientFundsError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient coins: need %d, have %d", e.Required, e.Balance)
}

// MessageCost computes the coins the sender is charged for one message.
// Models message for free; everyone else pays the recipient's rate with a
// platform-wide floor of 10 coins.
func MessageCost(sender, recipient Actor) int64 {
	if sender.Kind == ActorModel {
		return 0
	}
	const floor = 10
	if rate := recipient.MessageRate(); rate > floor {
		return rate
	}
	return floor
}
