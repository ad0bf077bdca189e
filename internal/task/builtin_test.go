package task

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTask(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		args     []any
		expected string
	}{
		{name: "two plus two", args: []any{2, 2}, expected: "4"},
		{name: "negative", args: []any{-10, 4}, expected: "-6"},
		{name: "floats", args: []any{0.5, 0.25}, expected: "0.75"},
		{name: "mixed", args: []any{1, 1.5}, expected: "2.5"},
		{name: "whole float stays float", args: []any{json.RawMessage("2.0"), 2}, expected: "4.0"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload, err := EncodePayload(tc.args...)
			require.NoError(t, err)
			args, err := DecodePayload(payload)
			require.NoError(t, err)

			result, err := AddTask(context.Background(), args)
			require.NoError(t, err)

			encoded, err := json.Marshal(result)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(encoded))
		})
	}
}

func TestAddTaskInvalidArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []any
	}{
		{name: "no arguments", args: nil},
		{name: "one argument", args: []any{1}},
		{name: "three arguments", args: []any{1, 2, 3}},
		{name: "string argument", args: []any{"2", 2}},
		{name: "null argument", args: []any{2, nil}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload, err := EncodePayload(tc.args...)
			require.NoError(t, err)
			args, err := DecodePayload(payload)
			require.NoError(t, err)

			_, err = AddTask(context.Background(), args)
			assert.ErrorIs(t, err, ErrInvalidArgs)
		})
	}
}
