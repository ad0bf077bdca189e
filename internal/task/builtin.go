package task

import (
	"context"
	"fmt"

	"github.com/phrazzld/taskapi/internal/domain/arith"
)

// AddTaskName is the registered name of the addition task.
const AddTaskName = "add_task"

// RegisterBuiltins registers the tasks shipped with the service.
func RegisterBuiltins(r *Registry) error {
	return r.Register(AddTaskName, AddTask)
}

// NewDefaultRegistry returns a registry holding the builtin tasks.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}

// AddTask implements add_task(x, y) -> x + y.
func AddTask(_ context.Context, args Args) (any, error) {
	if err := args.Expect(AddTaskName, 2); err != nil {
		return nil, err
	}

	x, err := arith.ParseNumber(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: x: %v", ErrInvalidArgs, err)
	}
	y, err := arith.ParseNumber(args[1])
	if err != nil {
		return nil, fmt.Errorf("%w: y: %v", ErrInvalidArgs, err)
	}

	return arith.Add(x, y), nil
}
