package server

import "todo-tracker/internal/task"

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

type TaskResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Tasks  int    `json:"tasks"`
}

func toResponse(t task.Task) TaskResponse {
	r := t.Record()
	return TaskResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

func toListResponse(tasks []task.Task) ListTasksResponse {
	out := ListTasksResponse{Tasks: make([]TaskResponse, 0, len(tasks)), Total: len(tasks)}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toResponse(t))
	}
	return out
}
