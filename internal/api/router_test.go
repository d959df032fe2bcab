package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/strefethen/crud-example/internal/config"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	resp, raw := app.do(t, http.MethodPost, "/items", itemBody("Widget", 9.99))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created domain.Item
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Len(t, created.ID, 20)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 9.99, created.Price)

	resp, raw = app.do(t, http.MethodGet, "/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched domain.Item
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	resp, raw = app.do(t, http.MethodPut, "/items/"+created.ID, itemBody("Gadget", 0))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var updated domain.Item
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Gadget", updated.Name)
	assert.Zero(t, updated.Price)

	resp, raw = app.do(t, http.MethodGet, "/items/count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1}`, string(raw))

	resp, _ = app.do(t, http.MethodDelete, "/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = app.do(t, http.MethodGet, "/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Item not found: "+created.ID, decodeErrorBody(t, raw).Message)
}

func TestListItemsPagination(t *testing.T) {
	app := newTestApp(t, nil)

	resp, raw := app.do(t, http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw), "empty store lists as an empty array")

	for _, name := range []string{"a", "b", "c"} {
		resp, _ := app.do(t, http.MethodPost, "/items", itemBody(name, 1))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"a", "b", "c"}},
		{query: "?offset=1", want: []string{"b", "c"}},
		{query: "?limit=2", want: []string{"a", "b"}},
		{query: "?offset=1&limit=1", want: []string{"b"}},
		{query: "?offset=5", want: []string{}},
		{query: "?limit=0", want: []string{}},
	}
	for _, tc := range tests {
		t.Run("query"+tc.query, func(t *testing.T) {
			resp, raw := app.do(t, http.MethodGet, "/items"+tc.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var items []domain.Item
			require.NoError(t, json.Unmarshal(raw, &items))
			names := []string{}
			for _, it := range items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}

	for _, bad := range []string{"?offset=-1", "?limit=abc", "?offset=1.5"} {
		t.Run("rejects"+bad, func(t *testing.T) {
			resp, raw := app.do(t, http.MethodGet, "/items"+bad, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, http.StatusBadRequest, decodeErrorBody(t, raw).StatusCode)
		})
	}
}

func TestCreateItemValidation(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name        string
		body        interface{}
		wantDetails map[string]string
		wantMessage string
	}{
		{
			name:        "missing price",
			body:        map[string]interface{}{"name": "Widget", "description": "d"},
			wantDetails: map[string]string{"price": "required field"},
		},
		{
			name:        "negative price",
			body:        itemBody("Widget", -1),
			wantDetails: map[string]string{"price": "must not be negative"},
		},
		{
			name: "everything missing",
			body: map[string]interface{}{},
			wantDetails: map[string]string{
				"name":        "required field",
				"description": "required field",
				"price":       "required field",
			},
		},
		{
			name:        "malformed json",
			body:        `{"name":`,
			wantMessage: "Invalid request body",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := app.do(t, http.MethodPost, "/items", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeErrorBody(t, raw)
			if tc.wantDetails != nil {
				assert.Equal(t, "Invalid request parameters", body.Message)
				assert.Equal(t, tc.wantDetails, body.Details)
			}
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, body.Message)
			}
			assert.NotEmpty(t, body.TraceID)
		})
	}

	resp, raw := app.do(t, http.MethodGet, "/items/count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":0}`, string(raw), "rejected items are never stored")
}

// TestWidgetTaskCompletes creates an item, queues a WAIT task of 50ms and
// checks it moves to COMPLETED shortly after.
func TestWidgetTaskCompletes(t *testing.T) {
	app := newTestApp(t, nil)

	resp, raw := app.do(t, http.MethodPost, "/items", itemBody("Widget", 9.99))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item domain.Item
	require.NoError(t, json.Unmarshal(raw, &item))

	resp, raw = app.do(t, http.MethodPost, "/items/"+item.ID+"/tasks",
		map[string]interface{}{"kind": "WAIT", "length": 50})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(raw))

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &created))
	taskID, _ := created["id"].(string)
	require.NotEmpty(t, taskID)
	assert.Equal(t, "PENDING", created["status"])
	assert.Equal(t, "WAIT", created["kind"])
	assert.Equal(t, float64(50), created["length"])
	assert.Equal(t, item.ID, created["itemId"])

	monitorURL := app.server.URL + "/services/tasks/items/" + taskID + "/status"
	assert.Equal(t, monitorURL, created["monitorUrl"])
	assert.Equal(t, monitorURL, resp.Header.Get("Location"))

	assert.Eventually(t, func() bool {
		resp, raw := app.do(t, http.MethodGet, "/tasks/"+taskID, nil)
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var got map[string]interface{}
		return json.Unmarshal(raw, &got) == nil && got["status"] == "COMPLETED"
	}, time.Second, 10*time.Millisecond)

	resp, raw = app.do(t, http.MethodGet, strings.TrimPrefix(monitorURL, app.server.URL), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var viaMonitor map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &viaMonitor))
	assert.Equal(t, "COMPLETED", viaMonitor["status"])
	assert.NotEmpty(t, viaMonitor["completedAt"])
}

// TestTaskKindsLifecycle queues one task of every kind and checks that
// repeated reads see PENDING until the delay passes, then COMPLETED.
func TestTaskKindsLifecycle(t *testing.T) {
	tests := []struct {
		kind  string
		param string
	}{
		{kind: "WAIT", param: "length"},
		{kind: "HOLD", param: "duration"},
		{kind: "PAUSE", param: "seconds"},
		{kind: "DELAY", param: "seconds"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.kind, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t, nil)

			resp, raw := app.do(t, http.MethodPost, "/items", itemBody("Widget", 1))
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			var item domain.Item
			require.NoError(t, json.Unmarshal(raw, &item))

			const delayMs = 400
			resp, raw = app.do(t, http.MethodPost, "/items/"+item.ID+"/tasks",
				map[string]interface{}{"kind": tc.kind, tc.param: delayMs})
			require.Equal(t, http.StatusAccepted, resp.StatusCode, string(raw))
			var created map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &created))
			taskID, _ := created["id"].(string)
			require.NotEmpty(t, taskID)
			assert.Equal(t, float64(delayMs), created[tc.param])

			readStatus := func() string {
				resp, raw := app.do(t, http.MethodGet, "/tasks/"+taskID, nil)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				var got map[string]interface{}
				require.NoError(t, json.Unmarshal(raw, &got))
				status, _ := got["status"].(string)
				return status
			}

			for i := 0; i < 5; i++ {
				assert.Equal(t, "PENDING", readStatus(), "read %d", i)
			}
			assert.Equal(t, 1, app.scheduler.Pending(), "reads do not disarm or re-arm the timer")

			assert.Eventually(t, func() bool {
				return readStatus() == "COMPLETED"
			}, 3*time.Second, 20*time.Millisecond)

			for i := 0; i < 3; i++ {
				assert.Equal(t, "COMPLETED", readStatus())
			}
		})
	}
}

func TestCreateTaskErrors(t *testing.T) {
	app := newTestApp(t, nil)

	resp, raw := app.do(t, http.MethodPost, "/items", itemBody("Widget", 9.99))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item domain.Item
	require.NoError(t, json.Unmarshal(raw, &item))

	t.Run("unknown kind", func(t *testing.T) {
		resp, raw := app.do(t, http.MethodPost, "/items/"+item.ID+"/tasks",
			map[string]interface{}{"kind": "FOO", "length": 10})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeErrorBody(t, raw).Message, "FOO")
	})

	t.Run("missing kind", func(t *testing.T) {
		resp, _ := app.do(t, http.MethodPost, "/items/"+item.ID+"/tasks",
			map[string]interface{}{"length": 10})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown item", func(t *testing.T) {
		resp, raw := app.do(t, http.MethodPost, "/items/nope/tasks",
			map[string]interface{}{"kind": "WAIT", "length": 10})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Item not found: nope", decodeErrorBody(t, raw).Message)
	})

	t.Run("unknown item with empty body", func(t *testing.T) {
		resp, raw := app.do(t, http.MethodPost, "/items/nope/tasks", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Item not found: nope", decodeErrorBody(t, raw).Message)
	})

	t.Run("unknown item with invalid kind", func(t *testing.T) {
		resp, _ := app.do(t, http.MethodPost, "/items/nope/tasks",
			map[string]interface{}{"kind": "FOO"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty body on known item", func(t *testing.T) {
		resp, raw := app.do(t, http.MethodPost, "/items/"+item.ID+"/tasks", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeErrorBody(t, raw).Message, "No task kind specified")
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, raw := app.do(t, http.MethodPost, "/items/"+item.ID+"/tasks", `{"kind":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", decodeErrorBody(t, raw).Message)
	})

	t.Run("unknown task", func(t *testing.T) {
		resp, raw := app.do(t, http.MethodGet, "/tasks/nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Task not found: nope", decodeErrorBody(t, raw).Message)
	})

	assert.Zero(t, app.scheduler.Pending(), "rejected tasks are never scheduled")
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	resp, raw := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	resp, raw = app.do(t, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, decodeErrorBody(t, raw).StatusCode)

	resp, _ = app.do(t, http.MethodPatch, "/items", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = app.do(t, http.MethodPost, "/sessions", map[string]string{"username": "ada"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "sessions are off without auth")
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, nil)

	resp, _ := app.do(t, http.MethodOptions, "/items", nil,
		"Origin", "https://app.example",
		"Access-Control-Request-Method", http.MethodPost)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAuthenticatedFlow(t *testing.T) {
	jwt, err := auth.NewJWTService(config.AuthConfig{
		Enabled:              true,
		JWTSecret:            "thisisasecretkeythatis32charslong!!",
		TokenLifetimeMinutes: 5,
	})
	require.NoError(t, err)
	app := newTestApp(t, jwt)

	resp, raw := app.do(t, http.MethodGet, "/items", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authorization header required", decodeErrorBody(t, raw).Message)

	resp, _ = app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health stays public")

	resp, _ = app.do(t, http.MethodPost, "/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = app.do(t, http.MethodPost, "/sessions", map[string]string{"username": "ada"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var session SessionResponse
	require.NoError(t, json.Unmarshal(raw, &session))
	require.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), session.ExpiresAt, time.Minute)

	resp, _ = app.do(t, http.MethodGet, "/items", nil, "Authorization", "Bearer "+session.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = app.do(t, http.MethodGet, "/items", nil, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", decodeErrorBody(t, raw).Message)
}
