package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"todo-tracker/internal/task"
)

const filePerm = 0o644

// FileStore keeps the collection as an indented JSON array in one file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) Path() string { return s.path }

// Load reads the file. A missing file is an empty collection; an empty or
// malformed one is a *ParseError.
func (s *FileStore) Load(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Path: s.path, Err: errors.New("file is empty")}
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	if err := task.CheckUniqueIDs(tasks); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Save replaces the file contents atomically.
func (s *FileStore) Save(ctx context.Context, tasks []task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := atomicWriteFile(s.path, data, filePerm); err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func atomicWriteFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
