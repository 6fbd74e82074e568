package task

import "time"

type EventType string

const (
	EventAdded     EventType = "added"
	EventCompleted EventType = "completed"
	EventDeleted   EventType = "deleted"
)

// TopicPrefix is the subject namespace of task events; subscribe to
// TopicPrefix + ">" on NATS to receive all of them.
const TopicPrefix = "tasks."

// Event is published after a mutation has been saved.
type Event struct {
	Type   EventType `json:"type"`
	TaskID int       `json:"task_id"`
	Title  string    `json:"title"`
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

func (e Event) Topic() string { return TopicPrefix + string(e.Type) }
