package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(v float64) *float64 {
	return &v
}

func TestValidateTaskCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		req         TaskRequest
		wantAction  TaskAction
		wantErr     bool
		errContains string
	}{
		{
			name:       "wait with length",
			req:        TaskRequest{Kind: "WAIT", Length: ms(50)},
			wantAction: TaskAction{Kind: TaskKindWait, Amount: 50},
		},
		{
			name:       "hold with duration",
			req:        TaskRequest{Kind: "HOLD", Duration: ms(120)},
			wantAction: TaskAction{Kind: TaskKindHold, Amount: 120},
		},
		{
			name:       "pause with seconds",
			req:        TaskRequest{Kind: "PAUSE", Seconds: ms(10)},
			wantAction: TaskAction{Kind: TaskKindPause, Amount: 10},
		},
		{
			name:       "delay with seconds",
			req:        TaskRequest{Kind: "DELAY", Seconds: ms(0)},
			wantAction: TaskAction{Kind: TaskKindDelay, Amount: 0},
		},
		{
			name:       "extra parameters are ignored",
			req:        TaskRequest{Kind: "WAIT", Length: ms(5), Seconds: ms(9)},
			wantAction: TaskAction{Kind: TaskKindWait, Amount: 5},
		},
		{
			name:        "missing kind",
			req:         TaskRequest{Length: ms(50)},
			wantErr:     true,
			errContains: "No task kind specified. Valid kinds: WAIT, HOLD, PAUSE, DELAY",
		},
		{
			name:        "unknown kind",
			req:         TaskRequest{Kind: "FOO", Length: ms(50)},
			wantErr:     true,
			errContains: "Task kind FOO not supported. Valid kinds: WAIT, HOLD, PAUSE, DELAY",
		},
		{
			name:        "kind is case sensitive",
			req:         TaskRequest{Kind: "wait", Length: ms(50)},
			wantErr:     true,
			errContains: "Task kind wait not supported",
		},
		{
			name:        "no parameter at all",
			req:         TaskRequest{Kind: "HOLD"},
			wantErr:     true,
			errContains: "One of length, duration or seconds is required",
		},
		{
			name:        "wait given duration",
			req:         TaskRequest{Kind: "WAIT", Duration: ms(50)},
			wantErr:     true,
			errContains: "Task kind WAIT requires length",
		},
		{
			name:        "hold given seconds",
			req:         TaskRequest{Kind: "HOLD", Seconds: ms(50)},
			wantErr:     true,
			errContains: "Task kind HOLD requires duration",
		},
		{
			name:        "delay given length",
			req:         TaskRequest{Kind: "DELAY", Length: ms(50)},
			wantErr:     true,
			errContains: "Task kind DELAY requires seconds",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			action, err := ValidateTaskCreate(tc.req)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArgument), "error should wrap ErrInvalidArgument")
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantAction, action)
		})
	}
}

func TestTaskKinds(t *testing.T) {
	kinds := TaskKinds()
	assert.Equal(t, []TaskKind{TaskKindWait, TaskKindHold, TaskKindPause, TaskKindDelay}, kinds)
	for _, k := range kinds {
		assert.True(t, k.Valid(), k)
		assert.NotEmpty(t, k.Param(), k)
	}

	kinds[0] = "MUTATED"
	assert.Equal(t, TaskKindWait, TaskKinds()[0], "callers get a copy")
	assert.Equal(t, "WAIT, HOLD, PAUSE, DELAY", validKindList())
}

func TestTaskAction_Delay(t *testing.T) {
	t.Parallel()

	def := 15 * time.Second

	assert.Equal(t, 50*time.Millisecond, TaskAction{Kind: TaskKindWait, Amount: 50}.Delay(def))
	assert.Equal(t, 1500*time.Microsecond, TaskAction{Kind: TaskKindHold, Amount: 1.5}.Delay(def))
	assert.Equal(t, def, TaskAction{Kind: TaskKindPause, Amount: 0}.Delay(def))
	assert.Equal(t, def, TaskAction{Kind: TaskKindDelay, Amount: -3}.Delay(def))
}

func TestTask_JSONUsesKindParameter(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		kind  TaskKind
		param string
	}{
		{TaskKindWait, "length"},
		{TaskKindHold, "duration"},
		{TaskKindPause, "seconds"},
		{TaskKindDelay, "seconds"},
	} {
		task := Task{
			ID:         "task-1",
			ItemID:     "item-1",
			Status:     TaskStatusPending,
			Action:     TaskAction{Kind: tc.kind, Amount: 75},
			MonitorURL: "http://localhost/services/tasks/items/task-1/status",
			CreatedAt:  created,
		}

		data, err := json.Marshal(task)
		require.NoError(t, err)

		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Equal(t, string(tc.kind), fields["kind"])
		assert.Equal(t, float64(75), fields[tc.param])
		assert.Equal(t, "PENDING", fields["status"])
		assert.Equal(t, "item-1", fields["itemId"])
		assert.NotContains(t, fields, "completedAt")

		for _, other := range []string{"length", "duration", "seconds"} {
			if other != tc.param {
				assert.NotContains(t, fields, other)
			}
		}

		var decoded Task
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, task.Action, decoded.Action)
		assert.True(t, task.CreatedAt.Equal(decoded.CreatedAt))
	}
}

func TestTask_Complete(t *testing.T) {
	t.Parallel()

	task := Task{ID: "t", Status: TaskStatusPending}
	now := time.Now()

	assert.True(t, task.Complete(now))
	assert.Equal(t, TaskStatusCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)

	first := *task.CompletedAt
	assert.False(t, task.Complete(now.Add(time.Hour)), "second completion is a no-op")
	assert.Equal(t, first, *task.CompletedAt)
}
