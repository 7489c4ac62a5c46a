package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"talent-chat/internal/mocks"
)

func setupWalletRouter() (*gin.Engine, *mocks.LedgerRepositoryMock) {
	ledgerRepo := new(mocks.LedgerRepositoryMock)
	handler := NewWalletHandler(ledgerRepo)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("actorID", int64(1))
		c.Next()
	})
	r.GET("/wallet", handler.GetBalance)
	return r, ledgerRepo
}

func TestGetBalance(t *testing.T) {
	router, ledgerRepo := setupWalletRouter()

	ledgerRepo.On("Balance", mock.Anything, int64(1)).Return(int64(320), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(320), resp["balance"])
}

func TestGetBalanceError(t *testing.T) {
	router, ledgerRepo := setupWalletRouter()

	ledgerRepo.On("Balance", mock.Anything, int64(1)).Return(int64(0), errors.New("db down")).Once()

	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
