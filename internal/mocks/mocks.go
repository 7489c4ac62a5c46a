package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"talent-chat/internal/models"
	"talent-chat/internal/repositories"
)

type ActorRepositoryMock struct {
	mock.Mock
}

func (m *ActorRepositoryMock) GetActor(ctx context.Context, actorID int64) (models.Actor, error) {
	args := m.Called(ctx, actorID)
	var actor models.Actor
	if val := args.Get(0); val != nil {
		actor = val.(models.Actor)
	}
	return actor, args.Error(1)
}

func (m *ActorRepositoryMock) BulkActors(ctx context.Context, actorIDs []int64) ([]models.Actor, error) {
	args := m.Called(ctx, actorIDs)
	var actors []models.Actor
	if val := args.Get(0); val != nil {
		actors = val.([]models.Actor)
	}
	return actors, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateOrGetConversation(ctx context.Context, actorID, partnerID int64, kind models.ConversationKind, gigID *int64) (models.Conversation, error) {
	args := m.Called(ctx, actorID, partnerID, kind, gigID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, conversationID, actorID int64) (bool, error) {
	args := m.Called(ctx, conversationID, actorID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversations(ctx context.Context, actorID int64) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, actorID)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) MarkRead(ctx context.Context, conversationID, actorID int64, at time.Time) (models.ReadCursor, error) {
	args := m.Called(ctx, conversationID, actorID, at)
	var cursor models.ReadCursor
	if val := args.Get(0); val != nil {
		cursor = val.(models.ReadCursor)
	}
	return cursor, args.Error(1)
}

func (m *ConversationRepositoryMock) GetCursors(ctx context.Context, conversationID int64) ([]models.ReadCursor, error) {
	args := m.Called(ctx, conversationID)
	var cursors []models.ReadCursor
	if val := args.Get(0); val != nil {
		cursors = val.([]models.ReadCursor)
	}
	return cursors, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessagesBefore(ctx context.Context, conversationID, beforeID int64, limit int) ([]models.Message, bool, error) {
	args := m.Called(ctx, conversationID, beforeID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Bool(1), args.Error(2)
}

func (m *MessageRepositoryMock) SoftDeleteMessage(ctx context.Context, messageID, senderID int64) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) CreateSystemMessage(ctx context.Context, conversationID, senderID int64, content string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type LedgerRepositoryMock struct {
	mock.Mock
}

func (m *LedgerRepositoryMock) Balance(ctx context.Context, actorID int64) (int64, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerRepositoryMock) SendPaidMessage(ctx context.Context, conversationID, senderID int64, draft models.MessageDraft, cost int64) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, draft, cost)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *LedgerRepositoryMock) UnlockMessage(ctx context.Context, messageID, viewerID int64) (repositories.UnlockResult, error) {
	args := m.Called(ctx, messageID, viewerID)
	var result repositories.UnlockResult
	if val := args.Get(0); val != nil {
		result = val.(repositories.UnlockResult)
	}
	return result, args.Error(1)
}

func (m *LedgerRepositoryMock) Tip(ctx context.Context, fromID, toID, amount int64) (int64, error) {
	args := m.Called(ctx, fromID, toID, amount)
	return args.Get(0).(int64), args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) ToggleReaction(ctx context.Context, messageID, actorID int64, emoji string) (bool, error) {
	args := m.Called(ctx, messageID, actorID, emoji)
	return args.Bool(0), args.Error(1)
}

func (m *ReactionRepositoryMock) ListForMessage(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	args := m.Called(ctx, messageID)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

func (m *ReactionRepositoryMock) ListForMessages(ctx context.Context, messageIDs []int64) (map[int64][]models.Reaction, error) {
	args := m.Called(ctx, messageIDs)
	var reactions map[int64][]models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.(map[int64][]models.Reaction)
	}
	return reactions, args.Error(1)
}
