package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"talent-chat/internal/models"
	"talent-chat/internal/observability"
	"talent-chat/internal/repositories"
	"talent-chat/internal/telemetry"
	"talent-chat/internal/ws"
)

// MessageHandler manages message endpoints: paid send, history, pay-per-view
// unlock, reactions and soft delete.
type MessageHandler struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	ledgerRepo       repositories.LedgerRepository
	reactionRepo     repositories.ReactionRepository
	actorRepo        repositories.ActorRepository
	hub              *ws.Hub
	typing           *ws.TypingTracker
	audit            *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	conversationRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	ledgerRepo repositories.LedgerRepository,
	reactionRepo repositories.ReactionRepository,
	actorRepo repositories.ActorRepository,
	hub *ws.Hub,
	typing *ws.TypingTracker,
	audit *telemetry.AuditEmitter,
) *MessageHandler {
	return &MessageHandler{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		ledgerRepo:       ledgerRepo,
		reactionRepo:     reactionRepo,
		actorRepo:        actorRepo,
		hub:              hub,
		typing:           typing,
		audit:            audit,
	}
}

// ListMessages returns a page of conversation history in ascending order.
// An optional before=<id> cursor loads strictly older messages for infinite
// scroll; the response carries aggregated reactions and the id the caller's
// "seen" marker attaches to.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	conversationID, ok := pathID(c, "conversation_id")
	if !ok {
		return
	}

	actorID := actorIDFromContext(c)
	participant, err := h.conversationRepo.IsParticipant(c.Request.Context(), conversationID, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	var beforeID int64
	if raw := c.Query("before"); raw != "" {
		beforeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || beforeID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor"})
			return
		}
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	msgs, hasMore, err := h.messageRepo.ListMessagesBefore(c.Request.Context(), conversationID, beforeID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	messageIDs := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		messageIDs = append(messageIDs, m.ID)
	}
	reactionsByMessage, err := h.reactionRepo.ListForMessages(c.Request.Context(), messageIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reactions"})
		return
	}

	cursors, err := h.conversationRepo.GetCursors(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load read cursors"})
		return
	}
	var partnerReadAt time.Time
	for _, cursor := range cursors {
		if cursor.ActorID != actorID && cursor.LastReadAt.After(partnerReadAt) {
			partnerReadAt = cursor.LastReadAt
		}
	}

	redacted := make([]models.Message, 0, len(msgs))
	reactions := map[int64][]models.ReactionGroup{}
	for _, m := range msgs {
		redacted = append(redacted, m.RedactedFor(actorID))
		if rows := reactionsByMessage[m.ID]; len(rows) > 0 {
			reactions[m.ID] = models.GroupReactions(rows, actorID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":        redacted,
		"has_more":        hasMore,
		"reactions":       reactions,
		"seen_message_id": models.SeenMarkerID(msgs, actorID, partnerReadAt),
	})
}

// SendMessage stores a message, charging the sender according to the
// recipient's rate, and broadcasts it to the room.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	conversationID, ok := pathID(c, "conversation_id")
	if !ok {
		return
	}

	actorID := actorIDFromContext(c)
	conv, err := h.conversationRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(actorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	var req struct {
		Content       *string `json:"content"`
		MediaURL      *string `json:"media_url"`
		MediaType     *string `json:"media_type"`
		MediaPrice    int64   `json:"media_price"`
		MediaDuration *int    `json:"media_duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := models.MessageDraft{
		Content:       req.Content,
		MediaURL:      req.MediaURL,
		MediaType:     req.MediaType,
		MediaPrice:    req.MediaPrice,
		MediaDuration: req.MediaDuration,
	}
	if draft.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message needs text or media"})
		return
	}
	if draft.MediaPrice < 0 || (draft.MediaPrice > 0 && draft.MediaURL == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media price"})
		return
	}

	actors, err := h.actorRepo.BulkActors(c.Request.Context(), []int64{actorID, conv.OtherParticipant(actorID)})
	if err != nil || len(actors) != 2 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}
	sender, recipient := actors[0], actors[1]
	if sender.ID != actorID {
		sender, recipient = recipient, sender
	}
	cost := models.MessageCost(sender, recipient)

	msg, err := h.ledgerRepo.SendPaidMessage(c.Request.Context(), conversationID, actorID, draft, cost)
	if err != nil {
		if respondInsufficientFunds(c, err) {
			observability.IncCoinOp("message", "insufficient")
			return
		}
		observability.IncCoinOp("message", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	observability.IncCoinOp("message", "ok")
	observability.AddCoinsMoved("message", cost)

	h.typing.Clear(conversationID, actorID)
	h.hub.BroadcastMessage(conversationID, msg)
	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("message sent conversation=%d cost=%d ppv=%t", conversationID, cost, msg.MediaPrice > 0),
		requestIDFromContext(c), actorIDPointer(c))

	c.JSON(http.StatusCreated, gin.H{
		"message":        msg.RedactedFor(actorID),
		"coins_deducted": cost,
	})
}

// UnlockMessage grants the caller access to pay-per-view media. Idempotent:
// repeated unlocks report already_unlocked and never charge twice.
func (h *MessageHandler) UnlockMessage(c *gin.Context) {
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}

	actorID := actorIDFromContext(c)
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	participant, err := h.conversationRepo.IsParticipant(c.Request.Context(), msg.ConversationID, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	result, err := h.ledgerRepo.UnlockMessage(c.Request.Context(), messageID, actorID)
	if err != nil {
		if respondInsufficientFunds(c, err) {
			observability.IncCoinOp("unlock", "insufficient")
			return
		}
		if errors.Is(err, repositories.ErrNotPayPerView) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message has no locked media"})
			return
		}
		observability.IncCoinOp("unlock", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unlock media"})
		return
	}
	observability.IncCoinOp("unlock", "ok")
	observability.AddCoinsMoved("unlock", result.AmountPaid)

	if !result.AlreadyUnlocked {
		h.audit.Emit(c.Request.Context(), "INFO",
			fmt.Sprintf("media unlocked message=%d amount=%d", messageID, result.AmountPaid),
			requestIDFromContext(c), actorIDPointer(c))
	}

	c.JSON(http.StatusOK, result)
}

// ToggleReaction adds or removes the caller's emoji reaction and broadcasts
// the updated groups.
func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}

	var req struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := actorIDFromContext(c)
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	participant, err := h.conversationRepo.IsParticipant(c.Request.Context(), msg.ConversationID, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	reacted, err := h.reactionRepo.ToggleReaction(c.Request.Context(), messageID, actorID, req.Emoji)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle reaction"})
		return
	}

	reactions, err := h.reactionRepo.ListForMessage(c.Request.Context(), messageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reactions"})
		return
	}

	h.hub.BroadcastReaction(msg.ConversationID, messageID, reactions)
	c.JSON(http.StatusOK, gin.H{
		"emoji":     req.Emoji,
		"reacted":   reacted,
		"reactions": models.GroupReactions(reactions, actorID),
	})
}

// DeleteMessage soft-deletes a message; only the sender may do so. Clients are
// notified so they can swap in the tombstone.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}

	actorID := actorIDFromContext(c)
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	if err := h.messageRepo.SoftDeleteMessage(c.Request.Context(), messageID, actorID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotSender):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message"})
		case errors.Is(err, repositories.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		}
		return
	}

	h.hub.BroadcastDeletion(msg.ConversationID, messageID)
	c.Status(http.StatusNoContent)
}
