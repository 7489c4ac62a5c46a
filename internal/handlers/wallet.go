package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talent-chat/internal/repositories"
)

// WalletHandler exposes the authoritative coin balance. Clients treat local
// copies as optimistic caches and reconcile against this value.
type WalletHandler struct {
	ledgerRepo repositories.LedgerRepository
}

// NewWalletHandler builds a WalletHandler.
func NewWalletHandler(ledgerRepo repositories.LedgerRepository) *WalletHandler {
	return &WalletHandler{ledgerRepo: ledgerRepo}
}

// GetBalance returns the caller's coin balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	balance, err := h.ledgerRepo.Balance(c.Request.Context(), actorIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
