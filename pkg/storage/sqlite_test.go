package storage

import (
	"path/filepath"
	"testing"

	"github.com/selectdb/notifier/pkg/xerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteDB(t *testing.T) DB {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "notifier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteMessages(t *testing.T) {
	db := newTestSQLiteDB(t)

	messages, err := db.ListMessages(10)
	require.NoError(t, err)
	assert.Empty(t, messages)

	require.NoError(t, db.AddMessage("a", "first", 1))
	require.NoError(t, db.AddMessage("b", "second", 2))
	require.NoError(t, db.AddMessage("c", "third", 3))

	messages, err = db.ListMessages(2)
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{ID: "b", Message: "second", Timestamp: 2},
		{ID: "c", Message: "third", Timestamp: 3},
	}, messages)

	messages, err = db.ListMessages(10)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Message)
}

func TestSQLiteWebhooks(t *testing.T) {
	db := newTestSQLiteDB(t)

	require.NoError(t, db.AddWebhook("ops", "http://localhost:1/ops"))
	assert.ErrorIs(t, db.AddWebhook("ops", "http://localhost:1/other"), ErrWebhookExists)
	require.NoError(t, db.AddWebhook("dev", "http://localhost:1/dev"))

	webhooks, err := db.ListWebhooks()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ops": "http://localhost:1/ops",
		"dev": "http://localhost:1/dev",
	}, webhooks)

	require.NoError(t, db.RemoveWebhook("ops"))
	assert.ErrorIs(t, db.RemoveWebhook("ops"), ErrWebhookNotExists)

	webhooks, err = db.ListWebhooks()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"dev": "http://localhost:1/dev"}, webhooks)
}

func TestReverseMessages(t *testing.T) {
	assert.Empty(t, reverseMessages(nil))
	assert.Equal(t,
		[]Message{{ID: "2"}, {ID: "1"}},
		reverseMessages([]Message{{ID: "1"}, {ID: "2"}}))
}

func TestSQLiteOpenFailure(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "missing", "notifier.db"))
	require.Error(t, err)
	assert.Nil(t, db)

	xerr := xerror.As(err)
	require.NotNil(t, xerr)
	assert.Equal(t, xerror.DB, xerr.Category())
	assert.Contains(t, err.Error(), "create table messages failed")
}
