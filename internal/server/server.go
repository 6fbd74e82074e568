package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/singleflight"

	"todo-tracker/internal/task"
	"todo-tracker/pkg/cache"
)

// Server exposes a task.Manager over HTTP. Requests are serialised on mu
// because the Manager is not safe for concurrent use.
type Server struct {
	app   *fiber.App
	mu    sync.Mutex
	mgr   *task.Manager
	cache *cache.MemoryCache
	sf    singleflight.Group
}

func New(mgr *task.Manager, exportTTL time.Duration) *Server {
	s := &Server{
		mgr:   mgr,
		cache: cache.NewMemory(exportTTL),
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[server] ${status} ${method} ${path} ${latency}\n",
	}))
	s.setupRoutes()
	return s
}

// App returns the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// startupGrace is how long Start waits for an immediate Listen failure.
const startupGrace = 100 * time.Millisecond

// Start listens on addr in the background. It fails when the listener
// cannot be opened, such as a port already in use.
func (s *Server) Start(addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.app.Listen(addr); err != nil {
			log.Printf("[server] HTTP server error: %v", err)
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(startupGrace):
	}
	log.Printf("[server] HTTP server listening on %s", addr)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[server] Shutting down HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)

	api := s.app.Group("/api/v1")
	tasks := api.Group("/tasks")
	tasks.Get("/", s.listTasks)
	tasks.Post("/", s.createTask)
	tasks.Post("/:id/complete", s.completeTask)
	tasks.Delete("/:id", s.deleteTask)

	api.Get("/export", s.export)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// writeError maps domain errors onto status codes.
func writeError(c *fiber.Ctx, err error) error {
	var fe *task.FormatError
	switch {
	case errors.Is(err, task.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, task.ErrEmptyTitle), errors.As(err, &fe):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "validation_error", Message: err.Error()})
	default:
		log.Printf("[server] Request %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}
