// Package store implements task.Repository over a JSON file, SQLite (GORM),
// MySQL and PostgreSQL (sqlx).
package store

import (
	"context"
	"fmt"
	"os"

	"todo-tracker/internal/task"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

type Backend interface {
	task.Repository
	Close() error
}

// Open returns the backend named by kind. location is a file path for file
// and sqlite, a DSN for mysql and postgres.
func Open(ctx context.Context, kind, location string) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch kind {
	case BackendFile, "":
		return NewFileStore(location), nil
	case BackendSQLite:
		b, err = NewGormStore(location)
	case BackendMySQL:
		b, err = NewSQLStore(ctx, "mysql", location)
	case BackendPostgres:
		b, err = NewSQLStore(ctx, "pgx", location)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ParseError means stored data exists but is not a valid task collection.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corrupt task data in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError wraps a failure to read or write task storage. Path is the file
// path, or the driver name for SQL backends.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func dbDebug() bool { return os.Getenv("DB_DEBUG") == "true" }
