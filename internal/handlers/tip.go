package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"talent-chat/internal/observability"
	"talent-chat/internal/repositories"
	"talent-chat/internal/telemetry"
	"talent-chat/internal/ws"
)

// TipHandler transfers coins between actors and drops a system message into
// the conversation.
type TipHandler struct {
	ledgerRepo       repositories.LedgerRepository
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	actorRepo        repositories.ActorRepository
	hub              *ws.Hub
	audit            *telemetry.AuditEmitter
}

// NewTipHandler builds a TipHandler.
func NewTipHandler(ledgerRepo repositories.LedgerRepository, conversationRepo repositories.ConversationRepository, messageRepo repositories.MessageRepository, actorRepo repositories.ActorRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *TipHandler {
	return &TipHandler{
		ledgerRepo:       ledgerRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		actorRepo:        actorRepo,
		hub:              hub,
		audit:            audit,
	}
}

// SendTip moves coins to the recipient and announces the tip in the thread.
func (h *TipHandler) SendTip(c *gin.Context) {
	var req struct {
		RecipientID    int64 `json:"recipient_id" binding:"required"`
		Amount         int64 `json:"amount" binding:"required"`
		ConversationID int64 `json:"conversation_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tip amount must be positive"})
		return
	}

	actorID := actorIDFromContext(c)
	if actorID == req.RecipientID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot tip yourself"})
		return
	}

	conv, err := h.conversationRepo.GetConversation(c.Request.Context(), req.ConversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(actorID) || !conv.HasParticipant(req.RecipientID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	recipient, err := h.actorRepo.GetActor(c.Request.Context(), req.RecipientID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActorNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "recipient not found"})
		return
	}

	newBalance, err := h.ledgerRepo.Tip(c.Request.Context(), actorID, req.RecipientID, req.Amount)
	if err != nil {
		if respondInsufficientFunds(c, err) {
			observability.IncCoinOp("tip", "insufficient")
			return
		}
		observability.IncCoinOp("tip", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send tip"})
		return
	}
	observability.IncCoinOp("tip", "ok")
	observability.AddCoinsMoved("tip", req.Amount)

	// The announcement is best effort; the transfer already committed.
	notice := fmt.Sprintf("Tipped %d coins", req.Amount)
	if msg, err := h.messageRepo.CreateSystemMessage(c.Request.Context(), req.ConversationID, actorID, notice); err == nil {
		h.hub.BroadcastMessage(req.ConversationID, msg)
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("tip sent recipient=%d amount=%d", req.RecipientID, req.Amount),
		requestIDFromContext(c), actorIDPointer(c))

	c.JSON(http.StatusOK, gin.H{
		"new_balance":    newBalance,
		"recipient_name": recipient.DisplayName,
	})
}
