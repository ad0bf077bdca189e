package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapi/internal/platform/logger"
	"github.com/phrazzld/taskapi/internal/task"
)

// TaskStore implements the task.Store interface using PostgreSQL
type TaskStore struct {
	db  DBTX
	now func() time.Time
}

// Ensure TaskStore implements task.Store
var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new TaskStore
func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a TaskStore that runs its queries in tx.
func (s *TaskStore) WithTx(tx *sql.Tx) *TaskStore {
	return &TaskStore{db: tx, now: s.now}
}

const taskColumns = `id, name, payload, status, result, error_message, created_at, updated_at`

// SaveTask persists a task to the database
func (s *TaskStore) SaveTask(ctx context.Context, record *task.Record) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO tasks (id, name, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Name,
		record.Payload,
		string(record.Status),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save task",
			"task_id", record.ID,
			"task_name", record.Name,
			"error", err)
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}

	return nil
}

// UpdateTaskStatus updates the status, result and error message of a task
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.Status,
	result []byte,
	errorMsg string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET status = $1, result = $2, error_message = $3, updated_at = $4
		WHERE id = $5
	`

	var resultArg any
	if len(result) > 0 {
		resultArg = result
	}

	res, err := s.db.ExecContext(ctx, query,
		string(status),
		resultArg,
		sql.NullString{String: errorMsg, Valid: errorMsg != ""},
		s.now(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			"task_id", taskID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no task found with ID to update status", "task_id", taskID)
	}

	return nil
}

// GetTask retrieves a single task by ID
func (s *TaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, MapError(err))
	}
	return record, nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]*task.Record, error) {
	return s.getTasksByStatus(ctx, task.StatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]*task.Record, error) {
	return s.getTasksByStatus(ctx, task.StatusProcessing, olderThan)
}

// Ping checks database connectivity when the underlying handle supports it.
func (s *TaskStore) Ping(ctx context.Context) error {
	if pinger, ok := s.db.(interface{ PingContext(context.Context) error }); ok {
		return pinger.PingContext(ctx)
	}
	return nil
}

// getTasksByStatus returns tasks in status, oldest first. A positive
// olderThan limits the result to tasks not updated within that duration.
func (s *TaskStore) getTasksByStatus(
	ctx context.Context,
	status task.Status,
	olderThan time.Duration,
) ([]*task.Record, error) {
	log := logger.FromContext(ctx)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = $1`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, s.now().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query tasks by status: %w", MapError(err))
	}
	defer rows.Close()

	var records []*task.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*task.Record, error) {
	var (
		record       task.Record
		status       string
		errorMessage sql.NullString
	)

	if err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Payload,
		&status,
		&record.Result,
		&errorMessage,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}

	record.Status = task.Status(status)
	record.Error = errorMessage.String
	return &record, nil
}
