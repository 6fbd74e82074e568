package store

import (
	"fmt"

	"todo-tracker/internal/task"
)

// taskRow is the table layout shared by the sqlx and GORM backends. Dates
// and timestamps use the same text forms as the JSON file.
type taskRow struct {
	ID          int64  `db:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Title       string `db:"title" gorm:"column:title;not null"`
	Description string `db:"description" gorm:"column:description;not null"`
	DueDate     string `db:"due_date" gorm:"column:due_date;size:10;not null"`
	Priority    string `db:"priority" gorm:"column:priority;size:32;not null"`
	Status      string `db:"status" gorm:"column:status;size:16;not null;index"`
	CreatedAt   string `db:"created_at" gorm:"column:created_at;size:19;not null"`
	CompletedAt string `db:"completed_at" gorm:"column:completed_at;size:19;not null;default:''"`
}

func (taskRow) TableName() string { return "tasks" }

func toRows(tasks []task.Task) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		r := t.Record()
		rows = append(rows, taskRow{
			ID:          int64(r.ID),
			Title:       r.Title,
			Description: r.Description,
			DueDate:     r.DueDate,
			Priority:    r.Priority,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
			CompletedAt: r.CompletedAt,
		})
	}
	return rows
}

func fromRows(source string, rows []taskRow) ([]task.Task, error) {
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		t, err := task.FromRecord(task.Record{
			ID:          int(row.ID),
			Title:       row.Title,
			Description: row.Description,
			DueDate:     row.DueDate,
			Priority:    row.Priority,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			CompletedAt: row.CompletedAt,
		})
		if err != nil {
			return nil, &ParseError{Path: source, Err: fmt.Errorf("row %d: %w", row.ID, err)}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
