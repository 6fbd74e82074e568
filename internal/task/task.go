// Package task holds the task model, the overdue and ordering rules, and the
// Manager that keeps the collection in sync with its Repository.
package task

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Priority is kept exactly as entered after capitalisation. Values other
// than High, Medium and Low are legal and sort last.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority capitalises user input: "hIGH" becomes "High".
func ParsePriority(s string) Priority {
	r := []rune(strings.ToLower(strings.TrimSpace(s)))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return Priority(r)
}

// Rank orders priorities for display: High=1, Medium=2, Low=3, anything else 4.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusOverdue   Status = "Overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// Task is a single to-do item. CompletedAt is non-nil only when Status is
// StatusCompleted.
type Task struct {
	ID          int
	Title       string
	Description string
	DueDate     Date
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// ParseID reads a task ID typed by the user.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &FormatError{Field: "task ID", Input: s, Err: errors.New("expected a whole number")}
	}
	if id <= 0 {
		return 0, &FormatError{Field: "task ID", Input: s, Err: errors.New("must be positive")}
	}
	return id, nil
}

// NextID returns max(ID)+1, or 1 for an empty collection.
func NextID(tasks []Task) int {
	highest := 0
	for _, t := range tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest + 1
}

// UpdateOverdue marks every pending task due before today as overdue and
// reports how many changed.
func UpdateOverdue(tasks []Task, today Date) int {
	changed := 0
	for i := range tasks {
		if tasks[i].Status == StatusPending && tasks[i].DueDate.Before(today) {
			tasks[i].Status = StatusOverdue
			changed++
		}
	}
	return changed
}

// SortTasks orders tasks by priority rank, then by due date. Ties keep their
// existing order.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}

// Criterion selects a subset of tasks for FilterTasks.
type Criterion string

const (
	FilterPending     Criterion = "pending"
	FilterCompleted   Criterion = "completed"
	FilterDueToday    Criterion = "today"
	FilterDueTomorrow Criterion = "tomorrow"
	FilterOverdue     Criterion = "overdue"
)

func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case FilterPending, FilterCompleted, FilterDueToday, FilterDueTomorrow, FilterOverdue:
		return c, nil
	}
	return "", &FormatError{Field: "filter", Input: s, Err: errors.New("expected pending|completed|today|tomorrow|overdue")}
}

func (c Criterion) Matches(t Task, today Date) bool {
	switch c {
	case FilterPending:
		return t.Status == StatusPending
	case FilterCompleted:
		return t.Status == StatusCompleted
	case FilterDueToday:
		return t.DueDate.Equal(today)
	case FilterDueTomorrow:
		return t.DueDate.Equal(today.AddDays(1))
	case FilterOverdue:
		return t.Status == StatusOverdue
	}
	return false
}

// FilterTasks returns the tasks matching c as a new slice.
func FilterTasks(tasks []Task, c Criterion, today Date) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Matches(t, today) {
			out = append(out, t)
		}
	}
	return out
}
