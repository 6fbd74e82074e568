package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"todo-tracker/internal/cli"
	"todo-tracker/internal/config"
	"todo-tracker/internal/result"
	"todo-tracker/internal/server"
	"todo-tracker/internal/store"
	"todo-tracker/internal/task"
	"todo-tracker/pkg/mq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	mode := flag.String("mode", "menu", "menu|add|complete|delete|list|filter|export|server|watch")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: file|sqlite|mysql|postgres")
	flag.StringVar(&cfg.TasksFile, "file", cfg.TasksFile, "task file (file and sqlite backends)")
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "database DSN (mysql and postgres backends)")
	flag.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server for task events (optional)")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "http listen address (server mode)")
	title := flag.String("title", "", "task title (add)")
	desc := flag.String("desc", "", "task description (add)")
	due := flag.String("due", "", "due date YYYY-MM-DD (add)")
	priority := flag.String("priority", "Medium", "High|Medium|Low (add)")
	id := flag.String("id", "", "task ID (complete, delete)")
	by := flag.String("by", "pending", "pending|completed|today|tomorrow|overdue (filter)")
	format := flag.String("format", "json", "export format: json|csv|pdf")
	out := flag.String("out", "", "export output path (default tasks.<format>)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	if *mode == "watch" {
		watch(cfg)
		return
	}

	pub, closePub := connectPublisher(cfg.NATSURL)
	defer closePub()

	st, err := store.Open(ctx, cfg.Backend, cfg.Location())
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	mgr := task.NewManager(st, task.WithPublisher(pub))
	if err := mgr.Load(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	switch *mode {
	case "menu":
		if err := cli.NewMenu(mgr, os.Stdin, os.Stdout).Run(ctx); err != nil {
			log.Fatalf("menu: %v", err)
		}

	case "add":
		dueDate, err := task.ParseDate(*due)
		if err != nil {
			log.Fatalf("add: %v", err)
		}
		t, err := mgr.Add(ctx, task.NewTask{
			Title:       *title,
			Description: *desc,
			DueDate:     dueDate,
			Priority:    task.ParsePriority(*priority),
		})
		if err != nil {
			log.Fatalf("add: %v", err)
		}
		fmt.Printf("Task added successfully! (ID %d)\n", t.ID)

	case "complete":
		taskID, err := task.ParseID(*id)
		if err != nil {
			log.Fatalf("complete: %v", err)
		}
		if _, err := mgr.MarkCompleted(ctx, taskID); err != nil {
			exitOnNotFound(err)
			log.Fatalf("complete: %v", err)
		}
		fmt.Println("Task marked as completed!")

	case "delete":
		taskID, err := task.ParseID(*id)
		if err != nil {
			log.Fatalf("delete: %v", err)
		}
		if _, err := mgr.Delete(ctx, taskID); err != nil {
			exitOnNotFound(err)
			log.Fatalf("delete: %v", err)
		}
		fmt.Println("Task deleted successfully!")

	case "list":
		cli.PrintTasks(os.Stdout, "All Tasks", mgr.List())

	case "filter":
		c, err := task.ParseCriterion(*by)
		if err != nil {
			log.Fatalf("filter: %v", err)
		}
		tasks := mgr.Filter(c)
		if len(tasks) == 0 {
			fmt.Println("No tasks found for the selected filter.")
			return
		}
		cli.PrintTasks(os.Stdout, "Filtered Tasks", tasks)

	case "export":
		b, err := result.Export(mgr.List(), *format)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		path := *out
		if path == "" {
			path = "tasks." + *format
		}
		if err := os.WriteFile(path, b, 0644); err != nil {
			log.Fatalf("write: %v", err)
		}
		fmt.Printf("Exported -> %s\n", path)

	case "server":
		srv := server.New(mgr, cfg.ExportCacheTTL)
		if err := srv.Start(cfg.HTTPAddr); err != nil {
			log.Fatalf("server: %v", err)
		}

		wait := gfshutdown.GracefulShutdown(
			context.Background(),
			shutdownTimeout,
			map[string]gfshutdown.Operation{
				"http": func(ctx context.Context) error {
					return srv.Shutdown(ctx)
				},
			},
		)
		exitCode := <-wait
		log.Printf("Server exited with code: %d", exitCode)
		if exitCode != 0 {
			st.Close()
			closePub()
			os.Exit(exitCode)
		}

	default:
		fmt.Println("Usage examples:")
		fmt.Println("  go run ./cmd")
		fmt.Println("  go run ./cmd -mode add -title \"Write report\" -due 2025-01-31 -priority high")
		fmt.Println("  go run ./cmd -mode filter -by overdue")
		fmt.Println("  go run ./cmd -mode export -format pdf -out ./tasks.pdf")
		fmt.Println("  go run ./cmd -mode server -backend sqlite -file ./tasks.db")
		fmt.Println("  go run ./cmd -mode watch -nats-url nats://127.0.0.1:4222")
		os.Exit(1)
	}
}

// connectPublisher falls back to a no-op publisher when NATS is not
// configured or unreachable; events are optional.
func connectPublisher(url string) (mq.Publisher, func()) {
	if url == "" {
		return mq.Noop{}, func() {}
	}
	nc, err := mq.ConnectNATS(url)
	if err != nil {
		log.Printf("[mq] Warning: %v; task events disabled", err)
		return mq.Noop{}, func() {}
	}
	return nc, func() { _ = nc.Close() }
}

func watch(cfg config.Config) {
	if cfg.NATSURL == "" {
		log.Fatalf("watch: -nats-url or NATS_URL is required")
	}
	nc, err := mq.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("watch: %v", err)
	}

	var sub mq.Subscriber = nc
	err = sub.Subscribe(task.TopicPrefix+">", func(data []byte) error {
		var ev task.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		fmt.Printf("%s  %-9s [%d] %s - %s\n", task.FormatTimestamp(ev.At.Local()), ev.Type, ev.TaskID, ev.Title, ev.Status)
		return nil
	})
	if err != nil {
		log.Fatalf("watch: %v", err)
	}
	log.Printf("[mq] Watching %s> (Ctrl+C to stop)", task.TopicPrefix)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"nats": func(ctx context.Context) error {
				return nc.Close()
			},
		},
	)
	os.Exit(<-wait)
}

func exitOnNotFound(err error) {
	if errors.Is(err, task.ErrNotFound) {
		fmt.Println("Task not found.")
		os.Exit(1)
	}
}
