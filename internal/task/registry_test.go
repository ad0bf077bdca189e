package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	noop := func(context.Context, Args) (any, error) { return nil, nil }

	require.NoError(t, registry.Register("b_task", noop))
	require.NoError(t, registry.Register("a_task", noop))

	t.Run("duplicate registration", func(t *testing.T) {
		err := registry.Register("a_task", noop)
		assert.ErrorIs(t, err, ErrDuplicateTask)
	})

	t.Run("missing name or function", func(t *testing.T) {
		assert.Error(t, registry.Register("", noop))
		assert.Error(t, registry.Register("c_task", nil))
	})

	t.Run("lookup", func(t *testing.T) {
		fn, err := registry.Lookup("a_task")
		require.NoError(t, err)
		assert.NotNil(t, fn)

		_, err = registry.Lookup("missing")
		assert.ErrorIs(t, err, ErrUnknownTask)
		assert.False(t, registry.Has("missing"))
	})

	t.Run("names sorted", func(t *testing.T) {
		assert.Equal(t, []string{"a_task", "b_task"}, registry.Names())
	})
}

func TestDefaultRegistryHasAddTask(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	assert.True(t, registry.Has(AddTaskName))
	assert.ErrorIs(t, RegisterBuiltins(registry), ErrDuplicateTask)
}
