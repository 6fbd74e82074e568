package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/store"
	"todo-tracker/internal/task"
)

var serverNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	repo := store.NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
	mgr := task.NewManager(repo, task.WithClock(func() time.Time { return serverNow }))
	require.NoError(t, mgr.Load(context.Background()))
	return New(mgr, time.Minute)
}

func do(t *testing.T, s *Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createTask(t *testing.T, s *Server, title, due, priority string) TaskResponse {
	t.Helper()
	body := `{"title":"` + title + `","description":"d","due_date":"` + due + `","priority":"` + priority + `"}`
	resp, data := do(t, s, http.MethodPost, "/api/v1/tasks", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var tr TaskResponse
	require.NoError(t, json.Unmarshal(data, &tr))
	return tr
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)
	resp, data := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","tasks":0}`, string(data))
}

func TestCreateAndList(t *testing.T) {
	s := setupTestServer(t)
	low := createTask(t, s, "low", "2024-06-10", "low")
	high := createTask(t, s, "high", "2024-06-20", "HIGH")
	assert.Equal(t, 1, low.ID)
	assert.Equal(t, "Low", low.Priority)
	assert.Equal(t, "Pending", low.Status)
	assert.Equal(t, "2024-06-01 12:00:00", low.CreatedAt)
	assert.Empty(t, low.CompletedAt)

	resp, data := do(t, s, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list ListTasksResponse
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, high.ID, list.Tasks[0].ID)
	assert.Equal(t, low.ID, list.Tasks[1].ID)
}

func TestCreateValidation(t *testing.T) {
	s := setupTestServer(t)

	tests := map[string]string{
		"bad date":    `{"title":"x","due_date":"tomorrow"}`,
		"empty title": `{"title":"  ","due_date":"2024-06-10"}`,
		"bad body":    `{"title":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp, data := do(t, s, http.MethodPost, "/api/v1/tasks", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var er ErrorResponse
			require.NoError(t, json.Unmarshal(data, &er))
			assert.NotEmpty(t, er.Error)
		})
	}
}

func TestCompleteDeleteAndFilter(t *testing.T) {
	s := setupTestServer(t)
	a := createTask(t, s, "a", "2024-06-01", "Medium")
	b := createTask(t, s, "b", "2024-06-02", "Low")

	resp, data := do(t, s, http.MethodPost, "/api/v1/tasks/1/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var done TaskResponse
	require.NoError(t, json.Unmarshal(data, &done))
	assert.Equal(t, "Completed", done.Status)
	assert.Equal(t, "2024-06-01 12:00:00", done.CompletedAt)

	resp, data = do(t, s, http.MethodGet, "/api/v1/tasks?filter=completed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list ListTasksResponse
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, a.ID, list.Tasks[0].ID)

	resp, data = do(t, s, http.MethodGet, "/api/v1/tasks?filter=tomorrow", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, b.ID, list.Tasks[0].ID)

	resp, _ = do(t, s, http.MethodDelete, "/api/v1/tasks/2", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, s, http.MethodDelete, "/api/v1/tasks/2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/api/v1/tasks/99/complete", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, s, http.MethodDelete, "/api/v1/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/v1/tasks?filter=someday", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport(t *testing.T) {
	s := setupTestServer(t)
	createTask(t, s, "first", "2024-06-10", "High")

	resp, data := do(t, s, http.MethodGet, "/api/v1/export?format=csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(data), "first")
	assert.Equal(t, 1, s.cache.Len())

	// a mutation must invalidate the cached export
	createTask(t, s, "second", "2024-06-11", "Low")
	assert.Equal(t, 0, s.cache.Len())
	_, data = do(t, s, http.MethodGet, "/api/v1/export?format=csv", "")
	assert.Contains(t, string(data), "second")

	resp, data = do(t, s, http.MethodGet, "/api/v1/export?format=pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	resp, _ = do(t, s, http.MethodGet, "/api/v1/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportCacheHitAfterOtherRequests(t *testing.T) {
	s := setupTestServer(t)
	createTask(t, s, "first", "2024-06-10", "High")

	_, want := do(t, s, http.MethodGet, "/api/v1/export?format=csv", "")

	// unrelated traffic reuses the request buffers
	for i := 0; i < 50; i++ {
		do(t, s, http.MethodGet, "/api/v1/tasks?filter=xyz", "")
		do(t, s, http.MethodGet, "/api/v1/export?format=pdf", "")
		s.cache.Delete("pdf")
	}

	got, ok := s.cache.Get("csv")
	require.True(t, ok, "csv export should still be cached")
	assert.Equal(t, want, got)

	_, data := do(t, s, http.MethodGet, "/api/v1/export?format=CSV", "")
	assert.Equal(t, want, data)
}

func TestExportConcurrent(t *testing.T) {
	s := setupTestServer(t)
	createTask(t, s, "shared", "2024-06-10", "Low")

	const n = 8
	bodies := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/export?format=json", nil)
			resp, err := s.App().Test(req, 5000)
			if err != nil {
				return
			}
			bodies[i], _ = io.ReadAll(resp.Body)
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
	assert.Contains(t, string(bodies[0]), `"Title": "shared"`)
	assert.Equal(t, 1, s.cache.Len())
}

func TestStartPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := setupTestServer(t)
	err = s.Start(ln.Addr().String())
	assert.ErrorContains(t, err, "failed to start")
}

func TestStartAndShutdown(t *testing.T) {
	s := setupTestServer(t)
	require.NoError(t, s.Start("127.0.0.1:0"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
