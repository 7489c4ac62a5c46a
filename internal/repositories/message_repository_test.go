package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*MessageRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMessageRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func messageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "conversation_id", "sender_id", "content", "media_url", "media_type",
		"media_price", "media_duration", "is_system", "deleted_at", "created_at",
	})
}

func TestListMessagesBeforeScopesCursorToConversation(t *testing.T) {
	repo, mock := newMockRepo(t)

	// the cursor subquery must be pinned to the conversation, so a message id
	// from another thread resolves to nothing instead of a foreign timestamp
	mock.ExpectQuery(regexp.QuoteMeta(`(SELECT created_at, id FROM messages WHERE id=$2 AND conversation_id=$1)`)).
		WithArgs(int64(5), int64(42)).
		WillReturnRows(messageRows())

	msgs, hasMore, err := repo.ListMessagesBefore(context.Background(), 5, 42, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.False(t, hasMore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMessagesBeforeReversesPageAndReportsMore(t *testing.T) {
	repo, mock := newMockRepo(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := messageRows().
		AddRow(int64(2), int64(5), int64(1), "b", nil, nil, int64(0), nil, false, nil, base.Add(time.Minute)).
		AddRow(int64(1), int64(5), int64(1), "a", nil, nil, int64(0), nil, false, nil, base)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC LIMIT 2`)).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	msgs, hasMore, err := repo.ListMessagesBefore(context.Background(), 5, 0, 1)
	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(2), msgs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
