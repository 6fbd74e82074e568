package store

import (
	"context"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"todo-tracker/internal/task"
)

const createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    due_date VARCHAR(10) NOT NULL,
    priority VARCHAR(32) NOT NULL,
    status VARCHAR(16) NOT NULL,
    created_at VARCHAR(19) NOT NULL,
    completed_at VARCHAR(19) NOT NULL DEFAULT ''
)`

const insertTask = `INSERT INTO tasks
    (id, title, description, due_date, priority, status, created_at, completed_at)
    VALUES (:id, :title, :description, :due_date, :priority, :status, :created_at, :completed_at)`

// SQLStore keeps tasks in a "tasks" table reached through database/sql.
// driver is any name registered with database/sql: "mysql", "pgx", or
// "sqlite3" in tests.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("[store] Connected to %s", driver)
	return s, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTasks); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, title, description, due_date, priority, status, created_at, completed_at FROM tasks ORDER BY id`); err != nil {
		return nil, &IOError{Op: "read", Path: s.driver, Err: fmt.Errorf("query tasks: %w", err)}
	}
	return fromRows(s.driver+" tasks table", rows)
}

// Save replaces the table contents in a single transaction.
func (s *SQLStore) Save(ctx context.Context, tasks []task.Task) error {
	if err := s.replaceAll(ctx, tasks); err != nil {
		return &IOError{Op: "write", Path: s.driver, Err: err}
	}
	return nil
}

func (s *SQLStore) replaceAll(ctx context.Context, tasks []task.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for _, row := range toRows(tasks) {
		if _, err := tx.NamedExecContext(ctx, insertTask, row); err != nil {
			return fmt.Errorf("insert task %d: %w", row.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
