package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"talent-chat/internal/models"
	"talent-chat/internal/observability"
)

// Hub maintains active websocket rooms, one per conversation.
type Hub struct {
	log   *zap.SugaredLogger
	rooms map[int64]map[*websocket.Conn]ConnInfo
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[int64]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to a conversation room.
func (h *Hub) AddClient(conversationID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.rooms[conversationID][conn] = info
}

// RemoveClient removes a websocket connection from its room.
func (h *Hub) RemoveClient(conversationID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

type member struct {
	conn *websocket.Conn
	info ConnInfo
}

func (h *Hub) members(conversationID int64) []member {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := h.rooms[conversationID]
	out := make([]member, 0, len(conns))
	for conn, info := range conns {
		out = append(out, member{conn: conn, info: info})
	}
	return out
}

// BroadcastMessage sends a new message to every client in the room. Each
// connection receives its own redacted copy: locked media URLs never leave
// the server for actors outside the viewed-by set.
func (h *Hub) BroadcastMessage(conversationID int64, msg models.Message) {
	for _, m := range h.members(conversationID) {
		redacted := msg.RedactedFor(m.info.ActorID)
		event := models.ChatEvent{Type: models.EventMessage, Message: &redacted}
		h.send(conversationID, m, event)
	}
}

// BroadcastDeletion notifies clients that a message was soft-deleted.
func (h *Hub) BroadcastDeletion(conversationID, messageID int64) {
	for _, m := range h.members(conversationID) {
		h.send(conversationID, m, models.ChatEvent{Type: models.EventMessageDeleted, MessageID: messageID})
	}
}

// BroadcastReaction sends the updated reaction groups of a message. The
// Reacted flag is recomputed per receiving actor.
func (h *Hub) BroadcastReaction(conversationID, messageID int64, reactions []models.Reaction) {
	for _, m := range h.members(conversationID) {
		event := models.ChatEvent{
			Type:      models.EventReaction,
			MessageID: messageID,
			Reactions: models.GroupReactions(reactions, m.info.ActorID),
		}
		h.send(conversationID, m, event)
	}
}

// BroadcastCursor propagates a read-cursor advance to the room.
func (h *Hub) BroadcastCursor(conversationID int64, cursor models.ReadCursor) {
	for _, m := range h.members(conversationID) {
		h.send(conversationID, m, models.ChatEvent{Type: models.EventCursor, Cursor: &cursor})
	}
}

// BroadcastTyping tells everyone except the typist that the actor is typing.
func (h *Hub) BroadcastTyping(conversationID int64, typing models.TypingInfo) {
	for _, m := range h.members(conversationID) {
		if m.info.ActorID == typing.ActorID {
			continue
		}
		h.send(conversationID, m, models.ChatEvent{Type: models.EventTyping, Typing: &typing})
	}
}

// SendTypingSnapshot delivers the currently-typing set to one connection, so
// a client joining mid-composition sees indicators without waiting for the
// next refresh frame. The receiver's own entry is skipped.
func (h *Hub) SendTypingSnapshot(conversationID int64, conn *websocket.Conn, active []models.TypingInfo) {
	h.mu.RLock()
	info, ok := h.rooms[conversationID][conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	for i := range active {
		if active[i].ActorID == info.ActorID {
			continue
		}
		h.send(conversationID, member{conn: conn, info: info}, models.ChatEvent{Type: models.EventTyping, Typing: &active[i]})
	}
}

func (h *Hub) send(conversationID int64, m member, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Warnw("websocket write error", "conversation_id", conversationID, "conn_id", m.info.ConnID, "error", err)
		m.conn.Close()
		h.RemoveClient(conversationID, m.conn)
		h.publishWSError(conversationID, m.info, err)
	}
}

func (h *Hub) publishWSError(conversationID int64, info ConnInfo, err error) {
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(conversationID, "ws_error", info, time.Since(info.ConnectedAt), err.Error()),
	}, headers)
	observability.IncWSEvent("ws_error")
}

func wsEventPayload(conversationID int64, event string, info ConnInfo, duration time.Duration, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"conversation_id": conversationID,
			"event":           event,
			"conn_id":         info.ConnID,
			"duration_ms":     duration.Milliseconds(),
			"reason":          reason,
		},
		"identity": map[string]interface{}{
			"actor_id":  info.ActorID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
