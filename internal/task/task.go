package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task
type Status string

// Possible task status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Common errors returned by dispatchers and runners
var (
	ErrBrokerUnavailable = errors.New("task broker unavailable")
	ErrTaskNotFound      = errors.New("task not found")
	ErrQueueFull         = errors.New("task queue is full")
	ErrQueueClosed       = errors.New("task queue is closed")
	ErrUnknownTask       = errors.New("unknown task")
	ErrInvalidArgs       = errors.New("invalid task arguments")
	ErrDuplicateTask     = errors.New("task already registered")
)

// Handle identifies a submitted task. ID is the value returned to HTTP
// clients as task_id.
type Handle struct {
	ID   string
	Name string
}

// Info describes the current state of a submitted task.
type Info struct {
	ID     string          `json:"task_id"`
	Name   string          `json:"name"`
	State  Status          `json:"state"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Dispatcher submits named tasks for asynchronous execution and reports on
// their progress.
// Version: 1.0
type Dispatcher interface {
	// Submit enqueues name(args...) and returns without waiting for execution.
	// The returned handle is unique per submission.
	Submit(ctx context.Context, name string, args ...any) (Handle, error)

	// Lookup returns the state of a previously submitted task.
	// Returns ErrTaskNotFound when the ID is unknown or its result has expired.
	Lookup(ctx context.Context, id string) (*Info, error)
}

// Record is the persisted form of a task handled by the in-process Runner.
type Record struct {
	ID        uuid.UUID
	Name      string
	Payload   []byte
	Status    Status
	Result    []byte
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord creates a pending record with a fresh ID.
func NewRecord(name string, payload []byte) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.New(),
		Name:      name,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Info converts the record to its public form.
func (r *Record) Info() *Info {
	info := &Info{
		ID:    r.ID.String(),
		Name:  r.Name,
		State: r.Status,
		Error: r.Error,
	}
	if len(r.Result) > 0 {
		info.Result = json.RawMessage(r.Result)
	}
	return info
}
