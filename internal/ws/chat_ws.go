package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"talent-chat/internal/auth"
	"talent-chat/internal/models"
	"talent-chat/internal/observability"
	"talent-chat/internal/repositories"
)

// ConversationWebSocketHandler upgrades realtime connections for a
// conversation and feeds typing frames back into the room.
type ConversationWebSocketHandler struct {
	hub              *Hub
	conversationRepo repositories.ConversationRepository
	actorRepo        repositories.ActorRepository
	tokens           *auth.TokenService
	typing           *TypingTracker
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, conversationRepo repositories.ConversationRepository, actorRepo repositories.ActorRepository, tokens *auth.TokenService, typing *TypingTracker) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{
		hub:              hub,
		conversationRepo: conversationRepo,
		actorRepo:        actorRepo,
		tokens:           tokens,
		typing:           typing,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is what clients may push over the socket. Everything else in
// the protocol flows server-to-client.
type clientFrame struct {
	Type string `json:"type"`
}

// Handle upgrades the connection, registers the client and runs the read loop.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("conversation_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("talent-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		if q := c.Query("token"); q != "" {
			token = "Bearer " + q
		}
	}

	actorID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	participant, err := h.conversationRepo.IsParticipant(ctx, conversationID, actorID)
	if err != nil || !participant {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	actor, err := h.actorRepo.GetActor(ctx, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load actor"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		ActorID:     actorID,
		ActorName:   actor.DisplayName,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conversationID, conn, info)
	h.hub.SendTypingSnapshot(conversationID, conn, h.typing.Active(conversationID))

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	headers := observability.BuildHeaders(requestID, traceID)
	_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(conversationID, "ws_connect", info, 0, ""),
	}, headers)

	go h.readLoop(ctx, conversationID, conn, info, headers)
}

func (h *ConversationWebSocketHandler) readLoop(ctx context.Context, conversationID int64, conn *websocket.Conn, info ConnInfo, headers map[string]string) {
	// Typing frames arrive on every keystroke; rebroadcast at most twice a
	// second per connection.
	limiter := rate.NewLimiter(rate.Every(500*time.Millisecond), 1)

	var closeReason string
	defer func() {
		h.typing.Clear(conversationID, info.ActorID)
		h.hub.RemoveClient(conversationID, conn)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   wsEventPayload(conversationID, "ws_disconnect", info, time.Since(info.ConnectedAt), closeReason),
		}, headers)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
					EventType: "ws_events",
					EventName: "ws_error",
					Payload:   wsEventPayload(conversationID, "ws_error", info, time.Since(info.ConnectedAt), closeReason),
				}, headers)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type == models.EventTyping && limiter.Allow() {
			h.typing.Touch(conversationID, info.ActorID, info.ActorName)
			h.hub.BroadcastTyping(conversationID, models.TypingInfo{ActorID: info.ActorID, ActorName: info.ActorName})
			observability.IncWSEvent("typing")
		}
	}
}

func (h *ConversationWebSocketHandler) validateToken(header string) (int64, error) {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return h.tokens.Verify(header[len(prefix):])
	}
	return 0, errors.New("invalid token")
}
