package task

import (
	"encoding/json"
	"fmt"
)

// Record is the flat text form of a Task shared by every storage backend.
// Its JSON keys are the keys of the task file.
type Record struct {
	ID          int    `json:"ID"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	DueDate     string `json:"Due Date"`
	Priority    string `json:"Priority"`
	Status      string `json:"Status"`
	CreatedAt   string `json:"Created At"`
	CompletedAt string `json:"Completed At"`
}

func (t Task) Record() Record {
	r := Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.String(),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   FormatTimestamp(t.CreatedAt),
	}
	if t.CompletedAt != nil {
		r.CompletedAt = FormatTimestamp(*t.CompletedAt)
	}
	return r
}

// FromRecord validates r and converts it back to a Task.
func FromRecord(r Record) (Task, error) {
	if r.ID <= 0 {
		return Task{}, fmt.Errorf("task ID %d: must be positive", r.ID)
	}
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return Task{}, fmt.Errorf("task %d: %w", r.ID, err)
	}
	status := Status(r.Status)
	if !status.Valid() {
		return Task{}, fmt.Errorf("task %d: unknown status %q", r.ID, r.Status)
	}
	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("task %d: created at: %w", r.ID, err)
	}
	t := Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     due,
		Priority:    Priority(r.Priority),
		Status:      status,
		CreatedAt:   created,
	}
	if r.CompletedAt != "" && status != StatusCompleted {
		return Task{}, fmt.Errorf("task %d: completed at set on a %s task", r.ID, status)
	}
	if r.CompletedAt != "" {
		done, err := ParseTimestamp(r.CompletedAt)
		if err != nil {
			return Task{}, fmt.Errorf("task %d: completed at: %w", r.ID, err)
		}
		t.CompletedAt = &done
	}
	return t, nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := FromRecord(r)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// CheckUniqueIDs reports the first ID that appears more than once.
func CheckUniqueIDs(tasks []Task) error {
	seen := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate task ID %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
