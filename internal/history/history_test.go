// internal/history/history_test.go
package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyflow/internal/common/logger"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func TestStore_EnsureSchema(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS generation_history").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Insert(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO generation_history").
		WithArgs(
			sqlmock.AnyArg(), // generated uuid
			"Wireless Earbuds Pro",
			"electronics",
			"professional",
			"assistant",
			"asst_electronics",
			true,
			int64(2150),
			sqlmock.AnyArg(), // marshalled response
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Insert(context.Background(), Entry{
		ProductName:    "Wireless Earbuds Pro",
		Category:       "electronics",
		Style:          "professional",
		Method:         "assistant",
		AssistantID:    "asst_electronics",
		Success:        true,
		DurationMillis: 2150,
		Response:       map[string]string{"productTitle": "Wireless Earbuds Pro"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertErrorIsReturnedNotPanicked(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO generation_history").
		WillReturnError(assert.AnError)

	err := store.Insert(context.Background(), Entry{
		ProductName: "Earbuds",
		Category:    "electronics",
		Style:       "casual",
		Method:      "chat",
	})

	assert.Error(t, err)
}

func TestStore_Recent(t *testing.T) {
	store, mock := newTestStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "product_name", "category", "style", "method", "assistant_id", "success", "duration_ms", "created_at",
	}).
		AddRow("id-2", "Yoga Mat", "sports", "casual", "chat", nil, true, int64(4100), now).
		AddRow("id-1", "Earbuds", "electronics", "professional", "assistant", "asst_electronics", true, int64(2150), now.Add(-time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM generation_history").
		WithArgs(2).
		WillReturnRows(rows)

	entries, err := store.Recent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Yoga Mat", entries[0].ProductName)
	assert.Empty(t, entries[0].AssistantID)
	assert.Equal(t, "asst_electronics", entries[1].AssistantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
