package api

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskapi/internal/task"
)

type submission struct {
	name string
	args []any
}

// fakeDispatcher records submissions and serves lookups from a map.
type fakeDispatcher struct {
	mu          sync.Mutex
	submissions []submission
	infos       map[string]*task.Info
	submitErr   error
	lookupErr   error
}

func (f *fakeDispatcher) Submit(ctx context.Context, name string, args ...any) (task.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return task.Handle{}, f.submitErr
	}
	f.submissions = append(f.submissions, submission{name: name, args: args})
	return task.Handle{ID: uuid.NewString(), Name: name}, nil
}

func (f *fakeDispatcher) Lookup(ctx context.Context, id string) (*task.Info, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	info, ok := f.infos[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return info, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
