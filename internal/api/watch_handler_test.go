package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(app *testApp, path string) string {
	return "ws" + strings.TrimPrefix(app.server.URL, "http") + path
}

func seedPendingTask(t *testing.T, app *testApp, id string) {
	t.Helper()
	require.NoError(t, app.store.Update(context.Background(), func(doc *store.Document) error {
		doc.AddTask(domain.Task{
			ID:        id,
			ItemID:    "item-1",
			Status:    domain.TaskStatusPending,
			Action:    domain.TaskAction{Kind: domain.TaskKindWait, Amount: 40},
			CreatedAt: time.Now().UTC(),
		})
		return nil
	}))
}

func readTask(t *testing.T, conn *websocket.Conn) domain.Task {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var task domain.Task
	require.NoError(t, json.Unmarshal(raw, &task))
	return task
}

func TestWatch_ReceivesCompletion(t *testing.T) {
	app := newTestApp(t, nil)
	seedPendingTask(t, app, "t1")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(app, "/tasks/t1/watch"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	first := readTask(t, conn)
	assert.Equal(t, domain.TaskStatusPending, first.Status)

	require.NoError(t, app.scheduler.ScheduleCompletion("t1", 20*time.Millisecond))

	second := readTask(t, conn)
	assert.Equal(t, "t1", second.ID)
	assert.Equal(t, domain.TaskStatusCompleted, second.Status)
	require.NotNil(t, second.CompletedAt)

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr), "expected close frame, got %v", err)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
}

func TestWatch_AlreadyCompletedClosesImmediately(t *testing.T) {
	app := newTestApp(t, nil)
	seedPendingTask(t, app, "t1")
	require.NoError(t, app.scheduler.ScheduleCompletion("t1", 0))
	require.Eventually(t, func() bool {
		snap := app.store.Snapshot()
		task, err := snap.Task("t1")
		return err == nil && task.Status == domain.TaskStatusCompleted
	}, time.Second, 5*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(app, "/tasks/t1/watch"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	task := readTask(t, conn)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestWatch_UnknownTaskIs404(t *testing.T) {
	app := newTestApp(t, nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(app, "/tasks/nope/watch"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatch_ServerCloseEndsWatch(t *testing.T) {
	app := newTestApp(t, nil)
	seedPendingTask(t, app, "t1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(app, "/tasks/t1/watch"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	readTask(t, conn)

	app.router.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
