package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/events"
	"github.com/strefethen/crud-example/internal/platform/logger"
	"github.com/strefethen/crud-example/internal/redact"
	"github.com/strefethen/crud-example/internal/service"
)

const (
	watchWriteWait  = 5 * time.Second
	watchPongWait   = 60 * time.Second
	watchPingPeriod = (watchPongWait * 9) / 10
)

// EventSubscriber registers event handlers and returns a function that
// removes them again. events.InMemoryEventEmitter satisfies it.
type EventSubscriber interface {
	RegisterHandler(handler events.EventHandler) func()
}

// WatchHandler streams task status over a websocket. The client gets the
// task once on connect and once more when it completes.
type WatchHandler struct {
	taskService service.TaskService
	subscriber  EventSubscriber
	upgrader    websocket.Upgrader

	done      chan struct{}
	closeOnce sync.Once
}

// NewWatchHandler creates a WatchHandler. allowOrigin decides which browser
// origins may connect; nil allows all of them.
func NewWatchHandler(
	taskService service.TaskService,
	subscriber EventSubscriber,
	allowOrigin func(r *http.Request) bool,
) *WatchHandler {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &WatchHandler{
		taskService: taskService,
		subscriber:  subscriber,
		upgrader:    websocket.Upgrader{CheckOrigin: allowOrigin},
		done:        make(chan struct{}),
	}
}

// Close ends every open watch with a going-away close frame. Hijacked
// connections are not tracked by http.Server.Shutdown, so the server calls
// this during shutdown.
func (h *WatchHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Watch handles GET /tasks/{id}/watch
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	log := logger.FromContext(r.Context()).With("task_id", taskID)

	// Unknown tasks are rejected with a normal JSON error before upgrading.
	if _, err := h.taskService.GetTask(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	completed := make(chan struct{}, 1)
	unregister := h.subscriber.RegisterHandler(events.HandlerFunc(
		func(_ context.Context, event *events.TaskEvent) error {
			if event.Type == events.TaskCompleted && event.TaskID == taskID {
				select {
				case completed <- struct{}{}:
				default:
				}
			}
			return nil
		}))
	defer unregister()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Debug("websocket upgrade failed", "error", redact.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	// Read again after subscribing so a completion between the two reads
	// still reaches the client.
	ctx := context.WithoutCancel(r.Context())
	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		log.Error("failed to load watched task", "error", redact.Error(err))
		h.closeWith(conn, websocket.CloseInternalServerErr, "task unavailable")
		return
	}
	if err := h.send(conn, task); err != nil {
		log.Debug("failed to write task to watcher", "error", redact.Error(err))
		return
	}
	if task.Status == domain.TaskStatusCompleted {
		h.closeWith(conn, websocket.CloseNormalClosure, "task completed")
		return
	}

	gone := make(chan struct{})
	go h.readUntilClosed(conn, gone)

	ticker := time.NewTicker(watchPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-completed:
			task, err := h.taskService.GetTask(ctx, taskID)
			if err != nil {
				log.Error("failed to load completed task", "error", redact.Error(err))
				h.closeWith(conn, websocket.CloseInternalServerErr, "task unavailable")
				return
			}
			if err := h.send(conn, task); err != nil {
				log.Debug("failed to write task to watcher", "error", redact.Error(err))
				return
			}
			h.closeWith(conn, websocket.CloseNormalClosure, "task completed")
			return
		case <-ticker.C:
			deadline := time.Now().Add(watchWriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-gone:
			log.Debug("watcher disconnected")
			return
		case <-h.done:
			h.closeWith(conn, websocket.CloseGoingAway, "server shutting down")
			return
		}
	}
}

func (h *WatchHandler) send(conn *websocket.Conn, task *domain.Task) error {
	if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(task)
}

func (h *WatchHandler) closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(watchWriteWait)); err != nil {
		slog.Debug("failed to send websocket close frame", "error", err)
	}
}

// readUntilClosed drains client frames so pongs and close frames are
// processed, and closes gone once the connection fails.
func (h *WatchHandler) readUntilClosed(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
