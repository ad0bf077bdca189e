package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for persisting tasks run by the Runner
// Version: 1.0
type Store interface {
	// SaveTask persists a new task record
	SaveTask(ctx context.Context, record *Record) error

	// UpdateTaskStatus updates the status of a task along with its result or
	// error message. result is nil unless status is StatusCompleted.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status Status, result []byte, errorMsg string) error

	// GetTask retrieves a single task. Returns ErrTaskNotFound if it does not exist.
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)

	// GetPendingTasks retrieves all tasks with "pending" status, oldest first
	GetPendingTasks(ctx context.Context) ([]*Record, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]*Record, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}
