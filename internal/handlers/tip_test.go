package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talent-chat/internal/mocks"
	"talent-chat/internal/models"
	"talent-chat/internal/telemetry"
	"talent-chat/internal/ws"
)

type tipHandlerDeps struct {
	ledgerRepo       *mocks.LedgerRepositoryMock
	conversationRepo *mocks.ConversationRepositoryMock
	messageRepo      *mocks.MessageRepositoryMock
	actorRepo        *mocks.ActorRepositoryMock
}

func setupTipRouter() (*gin.Engine, tipHandlerDeps) {
	deps := tipHandlerDeps{
		ledgerRepo:       new(mocks.LedgerRepositoryMock),
		conversationRepo: new(mocks.ConversationRepositoryMock),
		messageRepo:      new(mocks.MessageRepositoryMock),
		actorRepo:        new(mocks.ActorRepositoryMock),
	}
	logger := zap.NewNop().Sugar()
	handler := NewTipHandler(
		deps.ledgerRepo,
		deps.conversationRepo,
		deps.messageRepo,
		deps.actorRepo,
		ws.NewHub(logger),
		telemetry.NewAuditEmitter(logger, nil, "audit_log.chat", "talent-chat", "test"),
	)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("actorID", int64(1))
		c.Next()
	})
	r.POST("/tips", handler.SendTip)
	return r, deps
}

func TestSendTipTransfersAndAnnounces(t *testing.T) {
	router, deps := setupTipRouter()

	conv := models.Conversation{ID: 5, ActorAID: 1, ActorBID: 2}
	recipient := models.Actor{ID: 2, Kind: models.ActorModel, DisplayName: "vera", Model: &models.ModelProfile{}}
	notice := models.Message{ID: 7, ConversationID: 5, SenderID: 1, System: true}

	deps.conversationRepo.On("GetConversation", mock.Anything, int64(5)).Return(conv, nil).Once()
	deps.actorRepo.On("GetActor", mock.Anything, int64(2)).Return(recipient, nil).Once()
	deps.ledgerRepo.On("Tip", mock.Anything, int64(1), int64(2), int64(100)).Return(int64(400), nil).Once()
	deps.messageRepo.On("CreateSystemMessage", mock.Anything, int64(5), int64(1), "Tipped 100 coins").Return(notice, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/tips", bytes.NewBufferString(`{"recipient_id":2,"amount":100,"conversation_id":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(400), resp["new_balance"])
	assert.Equal(t, "vera", resp["recipient_name"])
	deps.ledgerRepo.AssertExpectations(t)
	deps.messageRepo.AssertExpectations(t)
}

func TestSendTipInsufficientBalance(t *testing.T) {
	router, deps := setupTipRouter()

	conv := models.Conversation{ID: 5, ActorAID: 1, ActorBID: 2}
	recipient := models.Actor{ID: 2, Kind: models.ActorModel, DisplayName: "vera", Model: &models.ModelProfile{}}

	deps.conversationRepo.On("GetConversation", mock.Anything, int64(5)).Return(conv, nil).Once()
	deps.actorRepo.On("GetActor", mock.Anything, int64(2)).Return(recipient, nil).Once()
	deps.ledgerRepo.On("Tip", mock.Anything, int64(1), int64(2), int64(500)).
		Return(int64(0), &models.InsufficientFundsError{Required: 500, Balance: 120}).Once()

	req := httptest.NewRequest(http.MethodPost, "/tips", bytes.NewBufferString(`{"recipient_id":2,"amount":500,"conversation_id":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(500), resp["required"])
	assert.Equal(t, float64(120), resp["balance"])
	deps.messageRepo.AssertNotCalled(t, "CreateSystemMessage")
}

func TestSendTipRejectsSelfTip(t *testing.T) {
	router, deps := setupTipRouter()

	req := httptest.NewRequest(http.MethodPost, "/tips", bytes.NewBufferString(`{"recipient_id":1,"amount":100,"conversation_id":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	deps.ledgerRepo.AssertNotCalled(t, "Tip")
}

func TestSendTipRecipientMustBeParticipant(t *testing.T) {
	router, deps := setupTipRouter()

	conv := models.Conversation{ID: 5, ActorAID: 1, ActorBID: 3}
	deps.conversationRepo.On("GetConversation", mock.Anything, int64(5)).Return(conv, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/tips", bytes.NewBufferString(`{"recipient_id":2,"amount":100,"conversation_id":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	deps.ledgerRepo.AssertNotCalled(t, "Tip")
}
