package store

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/task"
)

func newSQLiteSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLStore(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSQLStore(t)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, sampleTasks()))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assertSameTasks(t, sampleTasks(), got)
}

func TestSQLStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSQLStore(t)

	require.NoError(t, s.Save(ctx, sampleTasks()))
	require.NoError(t, s.Save(ctx, sampleTasks()[:1]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	require.NoError(t, s.Save(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLStoreDuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSQLStore(t)
	require.NoError(t, s.Save(ctx, sampleTasks()))

	dup := append(sampleTasks(), task.Task{ID: 1, Title: "dup", DueDate: task.NewDate(2024, 1, 1), Status: task.StatusPending})
	var ioe *IOError
	require.ErrorAs(t, s.Save(ctx, dup), &ioe)
	assert.Equal(t, "write", ioe.Op)
	assert.Equal(t, "sqlite3", ioe.Path)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSameTasks(t, sampleTasks(), got)
}

func TestSQLStoreCorruptRow(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSQLStore(t)
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (id, title, description, due_date, priority, status, created_at, completed_at)
        VALUES (1, 'a', '', 'soon', 'Low', 'Pending', '2024-05-20 09:30:00', '')`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestSQLStoreClosedReturnsIOError(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSQLStore(t)
	require.NoError(t, s.Close())

	var ioe *IOError
	require.ErrorAs(t, s.Save(ctx, sampleTasks()), &ioe)
	assert.Equal(t, "write", ioe.Op)

	_, err := s.Load(ctx)
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "read", ioe.Op)
}
