package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"talent-chat/internal/models"
	"talent-chat/internal/repositories"
	"talent-chat/internal/ws"
)

// ConversationHandler manages conversation endpoints.
type ConversationHandler struct {
	conversationRepo repositories.ConversationRepository
	actorRepo        repositories.ActorRepository
	hub              *ws.Hub
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversationRepo repositories.ConversationRepository, actorRepo repositories.ActorRepository, hub *ws.Hub) *ConversationHandler {
	return &ConversationHandler{
		conversationRepo: conversationRepo,
		actorRepo:        actorRepo,
		hub:              hub,
	}
}

// StartConversation creates or returns an existing thread with another actor.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		PartnerID int64  `json:"partner_id" binding:"required"`
		GigID     *int64 `json:"gig_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID := actorIDFromContext(c)
	if actorID == req.PartnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	if _, err := h.actorRepo.GetActor(c.Request.Context(), req.PartnerID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActorNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "partner not found"})
		return
	}

	kind := models.ConversationDirect
	if req.GigID != nil {
		kind = models.ConversationGig
	}

	conv, err := h.conversationRepo.CreateOrGetConversation(c.Request.Context(), actorID, req.PartnerID, kind, req.GigID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}

// ListConversations returns the caller's threads with partner info.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	actorID := actorIDFromContext(c)

	summaries, err := h.conversationRepo.ListConversations(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	partnerIDs := make([]int64, 0, len(summaries))
	for _, s := range summaries {
		partnerIDs = append(partnerIDs, s.PartnerID)
	}

	partners, err := h.actorRepo.BulkActors(c.Request.Context(), partnerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load partners"})
		return
	}
	partnerByID := map[int64]models.Actor{}
	for _, p := range partners {
		partnerByID[p.ID] = p
	}

	type conversationResponse struct {
		models.ConversationSummary
		Partner *models.Actor `json:"partner,omitempty"`
	}

	responses := make([]conversationResponse, 0, len(summaries))
	for _, s := range summaries {
		resp := conversationResponse{ConversationSummary: s}
		if partner, ok := partnerByID[s.PartnerID]; ok {
			partner.CoinBalance = 0 // balances are private
			resp.Partner = &partner
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": responses})
}

// MarkRead advances the caller's read cursor and broadcasts the new cursor so
// the partner's client can move its "seen" marker.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
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

	cursor, err := h.conversationRepo.MarkRead(c.Request.Context(), conversationID, actorID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update read cursor"})
		return
	}

	h.hub.BroadcastCursor(conversationID, cursor)
	c.JSON(http.StatusOK, cursor)
}
