package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talent-chat/internal/models"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func actorIDFromContext(c *gin.Context) int64 {
	if val, ok := c.Get("actorID"); ok {
		if id, ok := val.(int64); ok {
			return id
		}
	}
	return 0
}

func actorIDPointer(c *gin.Context) *int64 {
	if id := actorIDFromContext(c); id != 0 {
		return &id
	}
	return nil
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// respondInsufficientFunds translates a failed debit into HTTP 402 with the
// exact amounts so the client can show "need X, have Y".
func respondInsufficientFunds(c *gin.Context, err error) bool {
	var insufficient *models.InsufficientFundsError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":    "insufficient coins",
			"required": insufficient.Required,
			"balance":  insufficient.Balance,
		})
		return true
	}
	return false
}
