package server

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"todo-tracker/internal/result"
	"todo-tracker/internal/task"
)

// health handles GET /health.
func (s *Server) health(c *fiber.Ctx) error {
	s.mu.Lock()
	n := s.mgr.Len()
	s.mu.Unlock()
	return c.JSON(HealthResponse{Status: "healthy", Tasks: n})
}

// listTasks handles GET /api/v1/tasks?filter=.
func (s *Server) listTasks(c *fiber.Ctx) error {
	raw := c.Query("filter")

	var crit task.Criterion
	if raw != "" {
		var err error
		if crit, err = task.ParseCriterion(raw); err != nil {
			return writeError(c, err)
		}
	}

	s.mu.Lock()
	var tasks []task.Task
	if crit == "" {
		tasks = s.mgr.List()
	} else {
		tasks = s.mgr.Filter(crit)
	}
	s.mu.Unlock()

	return c.JSON(toListResponse(tasks))
}

// createTask handles POST /api/v1/tasks.
func (s *Server) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	due, err := task.ParseDate(req.DueDate)
	if err != nil {
		return writeError(c, err)
	}

	s.mu.Lock()
	created, err := s.mgr.Add(c.UserContext(), task.NewTask{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    task.ParsePriority(req.Priority),
	})
	if err == nil {
		s.cache.Purge()
	}
	s.mu.Unlock()
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toResponse(created))
}

// completeTask handles POST /api/v1/tasks/:id/complete.
func (s *Server) completeTask(c *fiber.Ctx) error {
	id, err := task.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	s.mu.Lock()
	done, err := s.mgr.MarkCompleted(c.UserContext(), id)
	if err == nil {
		s.cache.Purge()
	}
	s.mu.Unlock()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toResponse(done))
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (s *Server) deleteTask(c *fiber.Ctx) error {
	id, err := task.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	s.mu.Lock()
	_, err = s.mgr.Delete(c.UserContext(), id)
	if err == nil {
		s.cache.Purge()
	}
	s.mu.Unlock()
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// export handles GET /api/v1/export?format=json|csv|pdf.
func (s *Server) export(c *fiber.Ctx) error {
	// c.Query aliases the request buffer; key the cache with the constant.
	i := slices.Index(result.Formats, strings.ToLower(c.Query("format", "json")))
	if i < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "format must be one of json, csv, pdf",
		})
	}

	format := result.Formats[i]
	v, err, _ := s.sf.Do(format, func() (any, error) {
		if b, ok := s.cache.Get(format); ok {
			return b, nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		b, err := result.Export(s.mgr.List(), format)
		if err != nil {
			return nil, err
		}
		s.cache.Set(format, b)
		return b, nil
	})
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, result.ContentType(format))
	return c.Send(v.([]byte))
}
