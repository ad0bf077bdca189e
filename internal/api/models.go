package api

import (
	"github.com/phrazzld/taskapi/internal/domain/arith"
)

// GreetingResponse is the body of GET /.
type GreetingResponse struct {
	Hello string `json:"Hello"`
}

// SubmitTaskRequest is the optional body of POST /tasks/. Numbers keep full
// integer precision.
type SubmitTaskRequest struct {
	X *arith.Number `json:"x" validate:"required"`
	Y *arith.Number `json:"y" validate:"required"`
}

// SubmitTaskResponse carries the handle of a submitted task.
type SubmitTaskResponse struct {
	TaskID string `json:"task_id"`
}

// Default arguments submitted when POST /tasks/ has no body.
var (
	DefaultX = arith.Int(2)
	DefaultY = arith.Int(2)
)
