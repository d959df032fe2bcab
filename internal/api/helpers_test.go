package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/events"
	"github.com/strefethen/crud-example/internal/platform/logger"
	"github.com/strefethen/crud-example/internal/service"
	"github.com/strefethen/crud-example/internal/service/auth"
	"github.com/strefethen/crud-example/internal/store"
	"github.com/strefethen/crud-example/internal/task"
	"github.com/stretchr/testify/require"
)

// testApp is the full HTTP stack over an in-memory store.
type testApp struct {
	server    *httptest.Server
	store     *store.DocumentStore
	scheduler *task.Scheduler
	router    *Router
	logs      *logger.TestLogBuffer
}

func newTestApp(t *testing.T, jwt auth.JWTService) *testApp {
	t.Helper()

	logs, log := logger.NewTestLogger(t)

	docs, err := store.New(store.NewMemoryBackend(), log)
	require.NoError(t, err)

	emitter := events.NewInMemoryEventEmitter(log)
	scheduler := task.NewScheduler(docs, task.SchedulerConfig{DefaultDelay: time.Second}, log, emitter)
	t.Cleanup(scheduler.Stop)

	items, err := service.NewItemService(docs, log)
	require.NoError(t, err)
	tasks, err := service.NewTaskService(docs, scheduler,
		service.TaskServiceConfig{DefaultDelay: time.Second, Collection: "items"}, log)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger: log,
		Items:  items,
		Tasks:  tasks,
		Events: emitter,
		JWT:    jwt,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		router.Close()
		srv.Close()
	})

	return &testApp{server: srv, store: docs, scheduler: scheduler, router: router, logs: logs}
}

// do sends a JSON request and returns the response with its body read.
func (a *testApp) do(t *testing.T, method, path string, body interface{}, headers ...string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeErrorBody(t *testing.T, raw []byte) shared.ErrorBody {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &resp), "body: %s", raw)
	return resp.Error
}

func itemBody(name string, price float64) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"description": name + " description",
		"price":       price,
	}
}
