// Package cli is the interactive text menu over a task.Manager.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"todo-tracker/internal/task"
)

const (
	msgInvalidChoice = "Invalid choice. Try again."
	msgNotFound      = "Task not found."
	msgNoMatches     = "No tasks found for the selected filter."
)

var filterChoices = map[string]task.Criterion{
	"1": task.FilterPending,
	"2": task.FilterCompleted,
	"3": task.FilterDueToday,
	"4": task.FilterDueTomorrow,
	"5": task.FilterOverdue,
}

// Menu reads choices line by line from in and writes everything, prompts
// and errors alike, to out.
type Menu struct {
	mgr *task.Manager
	in  *bufio.Scanner
	out io.Writer
}

func NewMenu(mgr *task.Manager, in io.Reader, out io.Writer) *Menu {
	return &Menu{mgr: mgr, in: bufio.NewScanner(in), out: out}
}

// Run loops until the user picks 0, input ends, or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()
		choice, err := m.prompt("Enter your choice: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.add(ctx)
		case "2":
			err = m.complete(ctx)
		case "3":
			err = m.delete(ctx)
		case "4":
			PrintTasks(m.out, "All Tasks", m.mgr.List())
		case "5":
			err = m.filter()
		case "0":
			fmt.Fprintln(m.out, "Exiting... Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, msgInvalidChoice)
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil {
			m.report(err)
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out, "\n=== TO-DO LIST MENU ===")
	fmt.Fprintln(m.out, "1. Add Task")
	fmt.Fprintln(m.out, "2. Mark Task as Completed")
	fmt.Fprintln(m.out, "3. Delete Task")
	fmt.Fprintln(m.out, "4. View All Tasks")
	fmt.Fprintln(m.out, "5. Filter Tasks")
	fmt.Fprintln(m.out, "0. Exit")
}

func (m *Menu) add(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- Add New Task ---")
	title, err := m.prompt("Title: ")
	if err != nil {
		return err
	}
	desc, err := m.prompt("Description: ")
	if err != nil {
		return err
	}
	rawDue, err := m.prompt("Due Date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	rawPriority, err := m.prompt("Priority (High/Medium/Low): ")
	if err != nil {
		return err
	}

	due, err := task.ParseDate(rawDue)
	if err != nil {
		return err
	}
	if _, err := m.mgr.Add(ctx, task.NewTask{
		Title:       title,
		Description: desc,
		DueDate:     due,
		Priority:    task.ParsePriority(rawPriority),
	}); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Task added successfully!")
	return nil
}

func (m *Menu) complete(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- Mark Task as Completed ---")
	id, err := m.promptID("Enter Task ID: ")
	if err != nil {
		return err
	}
	if _, err := m.mgr.MarkCompleted(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Task marked as completed!")
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- Delete Task ---")
	id, err := m.promptID("Enter Task ID to delete: ")
	if err != nil {
		return err
	}
	if _, err := m.mgr.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Task deleted successfully!")
	return nil
}

func (m *Menu) filter() error {
	fmt.Fprintln(m.out, "\n--- Filter Tasks ---")
	fmt.Fprintln(m.out, "1. Pending\n2. Completed\n3. Due Today\n4. Due Tomorrow\n5. Overdue")
	choice, err := m.prompt("Select option: ")
	if err != nil {
		return err
	}
	c, ok := filterChoices[strings.TrimSpace(choice)]
	if !ok {
		fmt.Fprintln(m.out, msgInvalidChoice)
		return nil
	}
	tasks := m.mgr.Filter(c)
	if len(tasks) == 0 {
		fmt.Fprintln(m.out, msgNoMatches)
		return nil
	}
	PrintTasks(m.out, "Filtered Tasks", tasks)
	return nil
}

func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return m.in.Text(), nil
}

func (m *Menu) promptID(label string) (int, error) {
	raw, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	return task.ParseID(raw)
}

// report prints an operation error; the menu keeps running.
func (m *Menu) report(err error) {
	var fe *task.FormatError
	switch {
	case errors.Is(err, task.ErrNotFound):
		fmt.Fprintln(m.out, msgNotFound)
	case errors.Is(err, task.ErrEmptyTitle):
		fmt.Fprintln(m.out, "Title cannot be empty.")
	case errors.As(err, &fe):
		fmt.Fprintf(m.out, "Invalid %s: %q.\n", fe.Field, fe.Input)
	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
}
