package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/store"
	"todo-tracker/internal/task"
)

var menuNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)

func runMenu(t *testing.T, repo task.Repository, input string) (string, *task.Manager) {
	t.Helper()
	mgr := task.NewManager(repo, task.WithClock(func() time.Time { return menuNow }))
	require.NoError(t, mgr.Load(context.Background()))

	var out bytes.Buffer
	require.NoError(t, NewMenu(mgr, strings.NewReader(input), &out).Run(context.Background()))
	return out.String(), mgr
}

func fileRepo(t *testing.T) *store.FileStore {
	return store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
}

func TestMenuAddAndList(t *testing.T) {
	repo := fileRepo(t)
	input := strings.Join([]string{
		"1", "Write report", "Q2 numbers", "2024-06-05", "hIGH",
		"4",
		"0",
	}, "\n") + "\n"

	out, mgr := runMenu(t, repo, input)
	assert.Contains(t, out, "=== TO-DO LIST MENU ===")
	assert.Contains(t, out, "Task added successfully!")
	assert.Contains(t, out, "[1] Write report - High - Pending")
	assert.Contains(t, out, "Due: 2024-06-05 | Created: 2024-06-01 10:00:00 | Completed: ")
	assert.Contains(t, out, "Description: Q2 numbers")
	assert.Contains(t, out, "Exiting... Goodbye!")
	assert.Equal(t, 1, mgr.Len())

	saved, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, task.PriorityHigh, saved[0].Priority)
}

func TestMenuInvalidInput(t *testing.T) {
	input := strings.Join([]string{
		"9",
		"1", "Bad date", "", "31-12-2024", "Low",
		"2", "abc",
		"3", "42",
		"1", "   ", "", "2024-06-05", "Low",
		"0",
	}, "\n") + "\n"

	out, mgr := runMenu(t, fileRepo(t), input)
	assert.Contains(t, out, "Invalid choice. Try again.")
	assert.Contains(t, out, `Invalid due date: "31-12-2024".`)
	assert.Contains(t, out, `Invalid task ID: "abc".`)
	assert.Contains(t, out, "Task not found.")
	assert.Contains(t, out, "Title cannot be empty.")
	assert.Equal(t, 0, mgr.Len())
}

func TestMenuCompleteDeleteFilter(t *testing.T) {
	input := strings.Join([]string{
		"1", "Today", "", "2024-06-01", "Medium",
		"1", "Tomorrow", "", "2024-06-02", "Low",
		"1", "Past", "", "2024-01-01", "High",
		"2", "1",
		"5", "2",
		"5", "5",
		"3", "2",
		"5", "4",
		"5", "7",
		"0",
	}, "\n") + "\n"

	out, mgr := runMenu(t, fileRepo(t), input)
	assert.Contains(t, out, "Task marked as completed!")
	assert.Contains(t, out, "[1] Today - Medium - Completed")
	assert.Contains(t, out, "[3] Past - High - Overdue")
	assert.Contains(t, out, "Task deleted successfully!")
	assert.Contains(t, out, "No tasks found for the selected filter.")
	assert.Equal(t, 2, mgr.Len())
}

func TestMenuEOFExits(t *testing.T) {
	out, _ := runMenu(t, fileRepo(t), "1\nHalf typed\n")
	assert.Contains(t, out, "Title: ")
	assert.NotContains(t, out, "Task added successfully!")
}

type failingRepo struct{}

func (failingRepo) Load(context.Context) ([]task.Task, error) { return nil, nil }
func (failingRepo) Save(context.Context, []task.Task) error {
	return errors.New("read-only filesystem")
}

func TestMenuSaveError(t *testing.T) {
	out, mgr := runMenu(t, failingRepo{}, "1\nx\n\n2024-06-05\nLow\n0\n")
	assert.Contains(t, out, "Error: save tasks: read-only filesystem")
	assert.Equal(t, 0, mgr.Len())
}

func TestMenuCancelledContext(t *testing.T) {
	mgr := task.NewManager(failingRepo{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMenu(mgr, strings.NewReader("0\n"), &bytes.Buffer{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintTask(t *testing.T) {
	done := time.Date(2024, 6, 2, 8, 0, 0, 0, time.Local)
	var buf bytes.Buffer
	PrintTask(&buf, task.Task{
		ID: 7, Title: "Ship", Description: "v1", DueDate: task.NewDate(2024, 6, 3),
		Priority: task.PriorityLow, Status: task.StatusCompleted,
		CreatedAt: menuNow, CompletedAt: &done,
	})

	want := "[7] Ship - Low - Completed\n" +
		"Due: 2024-06-03 | Created: 2024-06-01 10:00:00 | Completed: 2024-06-02 08:00:00\n" +
		"Description: v1\n" +
		strings.Repeat("-", 40) + "\n"
	assert.Equal(t, want, buf.String())
}
