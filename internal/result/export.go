package result

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"todo-tracker/internal/task"
)

var ErrUnknownFormat = errors.New("unknown export format")

var Formats = []string{"json", "csv", "pdf"}

var csvHeader = []string{"id", "title", "description", "due_date", "priority", "status", "created_at", "completed_at"}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv"
	case "pdf":
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Export renders tasks in the given format. The json format is
// byte-compatible with the task file.
func Export(tasks []task.Task, format string) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(tasks, "", "    ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "csv":
		return exportCSV(tasks)
	case "pdf":
		return exportPDF(tasks)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func exportCSV(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)
	for _, t := range tasks {
		r := t.Record()
		_ = w.Write([]string{strconv.Itoa(r.ID), r.Title, r.Description, r.DueDate, r.Priority, r.Status, r.CreatedAt, r.CompletedAt})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	if len(tasks) == 0 {
		pdf.Cell(40, 6, "No tasks.")
	}
	for _, t := range tasks {
		r := t.Record()
		line := fmt.Sprintf("[%d] %s - %s - %s (due %s)", r.ID, r.Title, r.Priority, r.Status, r.DueDate)
		if r.CompletedAt != "" {
			line += ", completed " + r.CompletedAt
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		if r.Description != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr("    "+r.Description), "0", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
