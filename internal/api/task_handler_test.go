package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskapi/internal/domain/arith"
	"github.com/phrazzld/taskapi/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskRouter(d task.Dispatcher) http.Handler {
	h := NewTaskHandler(d, discardLogger())
	r := chi.NewRouter()
	r.Post("/tasks/", h.SubmitTask)
	r.Get("/tasks/{task_id}", h.GetTask)
	return r
}

func TestSubmitTask(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		wantX arith.Number
		wantY arith.Number
	}{
		{name: "empty body uses defaults", body: "", wantX: arith.Int(2), wantY: arith.Int(2)},
		{name: "integers", body: `{"x": 40, "y": 2}`, wantX: arith.Int(40), wantY: arith.Int(2)},
		{name: "float", body: `{"x": 1.5, "y": 2}`, wantX: arith.Float(1.5), wantY: arith.Int(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{}
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/tasks/", strings.NewReader(tt.body))

			newTaskRouter(d).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var resp SubmitTaskResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.TaskID)

			require.Len(t, d.submissions, 1)
			sub := d.submissions[0]
			assert.Equal(t, task.AddTaskName, sub.name)
			require.Len(t, sub.args, 2)
			assert.True(t, tt.wantX.Equal(sub.args[0].(arith.Number)), "x = %v", sub.args[0])
			assert.True(t, tt.wantY.Equal(sub.args[1].(arith.Number)), "y = %v", sub.args[1])
		})
	}
}

func TestSubmitTaskUniqueIDs(t *testing.T) {
	router := newTaskRouter(&fakeDispatcher{})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tasks/", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp SubmitTaskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, seen[resp.TaskID])
		seen[resp.TaskID] = true
	}
}

func TestSubmitTaskBadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed", body: `{"x":`, wantMsg: "Invalid request format"},
		{name: "non numeric", body: `{"x":"two","y":2}`, wantMsg: "Invalid request format"},
		{name: "unknown field", body: `{"x":1,"y":2,"z":3}`, wantMsg: "Invalid request format"},
		{name: "missing y", body: `{"x":1}`, wantMsg: "Invalid y: required field"},
		{name: "null x", body: `{"x":null,"y":1}`, wantMsg: "Invalid x: required field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{}
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/tasks/", strings.NewReader(tt.body))

			newTaskRouter(d).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMsg)
			assert.Empty(t, d.submissions)
		})
	}
}

func TestSubmitTaskDispatchErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "broker unavailable",
			err:        fmt.Errorf("%w: dial redis://:secret@localhost:6379/0", task.ErrBrokerUnavailable),
			wantStatus: http.StatusServiceUnavailable,
		},
		{name: "queue full", err: task.ErrQueueFull, wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newTaskRouter(&fakeDispatcher{submitErr: tt.err}).
				ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tasks/", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.NotContains(t, rr.Body.String(), "secret")
			assert.NotContains(t, rr.Body.String(), "task_id\":\"")
		})
	}
}

func TestGetTask(t *testing.T) {
	id := uuid.NewString()
	d := &fakeDispatcher{infos: map[string]*task.Info{
		id: {
			ID:     id,
			Name:   task.AddTaskName,
			State:  task.StatusCompleted,
			Result: json.RawMessage("4"),
		},
	}}
	router := newTaskRouter(d)

	t.Run("found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			fmt.Sprintf(`{"task_id":%q,"name":"add_task","state":"completed","result":4}`, id),
			rr.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("backend unavailable", func(t *testing.T) {
		rr := httptest.NewRecorder()
		newTaskRouter(&fakeDispatcher{lookupErr: task.ErrBrokerUnavailable}).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestNewTaskHandlerPanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { NewTaskHandler(nil, discardLogger()) })
	assert.Panics(t, func() { NewTaskHandler(&fakeDispatcher{}, nil) })
}
