package config

import (
	"fmt"
	"os"
	"time"

	"todo-tracker/internal/store"
)

const DefaultTasksFile = "tasks.json"

type Config struct {
	Backend        string
	TasksFile      string
	DSN            string
	NATSURL        string
	HTTPAddr       string
	ExportCacheTTL time.Duration
}

func Default() Config {
	return Config{
		Backend:        store.BackendFile,
		TasksFile:      DefaultTasksFile,
		HTTPAddr:       ":8080",
		ExportCacheTTL: 30 * time.Second,
	}
}

// FromEnv overlays environment variables on the defaults.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup("TASKS_BACKEND"); ok && v != "" {
		cfg.Backend = v
	}
	if v, ok := lookup("TASKS_FILE"); ok && v != "" {
		cfg.TasksFile = v
	}
	if v, ok := lookup("STORE_DSN"); ok {
		cfg.DSN = v
	}
	if v, ok := lookup("NATS_URL"); ok {
		cfg.NATSURL = v
	}
	if v, ok := lookup("HTTP_ADDR"); ok && v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := lookup("EXPORT_CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("EXPORT_CACHE_TTL: %w", err)
		}
		cfg.ExportCacheTTL = d
	}
	return cfg, nil
}

// Location is what store.Open needs for the configured backend.
func (c Config) Location() string {
	switch c.Backend {
	case store.BackendMySQL, store.BackendPostgres:
		return c.DSN
	default:
		return c.TasksFile
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case store.BackendFile, store.BackendSQLite:
		if c.TasksFile == "" {
			return fmt.Errorf("backend %s needs a file path", c.Backend)
		}
	case store.BackendMySQL, store.BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("backend %s needs STORE_DSN or -dsn", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q (want file|sqlite|mysql|postgres)", c.Backend)
	}
	if c.ExportCacheTTL < 0 {
		return fmt.Errorf("export cache ttl must not be negative")
	}
	return nil
}
