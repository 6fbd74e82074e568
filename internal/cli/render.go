package cli

import (
	"fmt"
	"io"
	"strings"

	"todo-tracker/internal/task"
)

var separator = strings.Repeat("-", 40)

// PrintTasks writes a heading followed by one block per task.
func PrintTasks(w io.Writer, heading string, tasks []task.Task) {
	fmt.Fprintf(w, "\n--- %s ---\n", heading)
	for _, t := range tasks {
		PrintTask(w, t)
	}
}

func PrintTask(w io.Writer, t task.Task) {
	r := t.Record()
	fmt.Fprintf(w, "[%d] %s - %s - %s\n", r.ID, r.Title, r.Priority, r.Status)
	fmt.Fprintf(w, "Due: %s | Created: %s | Completed: %s\n", r.DueDate, r.CreatedAt, r.CompletedAt)
	fmt.Fprintf(w, "Description: %s\n", r.Description)
	fmt.Fprintln(w, separator)
}
