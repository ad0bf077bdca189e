package redisq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	opts, err := ParseURL(ConnConfig{
		URL:          "redis://:secret@broker:6380/2",
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "broker:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)

	asynqOpt := AsynqOpt(opts)
	assert.Equal(t, "broker:6380", asynqOpt.Addr)
	assert.Equal(t, "secret", asynqOpt.Password)
	assert.Equal(t, 2, asynqOpt.DB)
	assert.Equal(t, 2*time.Second, asynqOpt.DialTimeout)
}

func TestParseURLInvalid(t *testing.T) {
	_, err := ParseURL(ConnConfig{URL: "http://localhost:6379"})
	assert.Error(t, err)
}
