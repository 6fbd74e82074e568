package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"todo-tracker/pkg/mq"
)

// Repository persists the whole task collection. Save replaces everything
// previously stored.
type Repository interface {
	Load(ctx context.Context) ([]Task, error)
	Save(ctx context.Context, tasks []Task) error
}

// Manager is the in-memory source of truth for the task collection. Every
// mutation saves the full collection first and only then updates memory, so
// a failed save leaves the Manager unchanged.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	repo  Repository
	pub   mq.Publisher
	now   func() time.Time
	tasks []Task
}

type Option func(*Manager)

// WithClock replaces time.Now, which decides both timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithPublisher(p mq.Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.pub = p
		}
	}
}

func NewManager(repo Repository, opts ...Option) *Manager {
	m := &Manager{
		repo:  repo,
		pub:   mq.Noop{},
		now:   time.Now,
		tasks: []Task{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory collection with the repository's and runs the
// overdue pass.
func (m *Manager) Load(ctx context.Context) error {
	tasks, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	m.tasks = tasks
	m.UpdateOverdue()
	return nil
}

// Tasks returns a copy of the collection in stored order.
func (m *Manager) Tasks() []Task {
	return slices.Clone(m.tasks)
}

func (m *Manager) Len() int { return len(m.tasks) }

func (m *Manager) Today() Date { return DateOf(m.now()) }

type NewTask struct {
	Title       string
	Description string
	DueDate     Date
	Priority    Priority
}

func (m *Manager) Add(ctx context.Context, in NewTask) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	if in.DueDate.IsZero() {
		return Task{}, &FormatError{Field: "due date", Input: ""}
	}

	t := Task{
		ID:          NextID(m.tasks),
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      StatusPending,
		CreatedAt:   m.timestamp(),
	}
	next := append(slices.Clone(m.tasks), t)
	if err := m.commit(ctx, next); err != nil {
		return Task{}, err
	}
	m.publish(EventAdded, t)
	return t, nil
}

// MarkCompleted completes the task with the given ID. A task that is
// already completed keeps its original completion time.
func (m *Manager) MarkCompleted(ctx context.Context, id int) (Task, error) {
	i := m.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	next := slices.Clone(m.tasks)
	t := &next[i]
	if t.Status != StatusCompleted || t.CompletedAt == nil {
		done := m.timestamp()
		t.Status = StatusCompleted
		t.CompletedAt = &done
	}
	if err := m.commit(ctx, next); err != nil {
		return Task{}, err
	}
	m.publish(EventCompleted, *t)
	return *t, nil
}

// Delete removes the task with the given ID and returns it.
func (m *Manager) Delete(ctx context.Context, id int) (Task, error) {
	i := m.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	removed := m.tasks[i]
	next := slices.Delete(slices.Clone(m.tasks), i, i+1)
	if err := m.commit(ctx, next); err != nil {
		return Task{}, err
	}
	m.publish(EventDeleted, removed)
	return removed, nil
}

// UpdateOverdue derives the overdue status in memory. It does not save; the
// derived status is persisted with the next mutation.
func (m *Manager) UpdateOverdue() int {
	return UpdateOverdue(m.tasks, m.Today())
}

// List returns every task in display order.
func (m *Manager) List() []Task {
	m.UpdateOverdue()
	out := m.Tasks()
	SortTasks(out)
	return out
}

// Filter returns the tasks matching c in display order.
func (m *Manager) Filter(c Criterion) []Task {
	m.UpdateOverdue()
	out := FilterTasks(m.tasks, c, m.Today())
	SortTasks(out)
	return out
}

func (m *Manager) indexOf(id int) int {
	return slices.IndexFunc(m.tasks, func(t Task) bool { return t.ID == id })
}

func (m *Manager) timestamp() time.Time {
	return m.now().Local().Truncate(time.Second)
}

func (m *Manager) commit(ctx context.Context, next []Task) error {
	if err := m.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	m.tasks = next
	return nil
}

// publish is best-effort: a failed publish is logged, never returned.
func (m *Manager) publish(typ EventType, t Task) {
	ev := Event{
		Type:   typ,
		TaskID: t.ID,
		Title:  t.Title,
		Status: t.Status,
		At:     m.now(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[task] Warning: failed to encode %s event for task %d: %v", typ, t.ID, err)
		return
	}
	if err := m.pub.Publish(ev.Topic(), data); err != nil {
		log.Printf("[task] Warning: failed to publish %s event for task %d: %v", typ, t.ID, err)
	}
}
