package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalJob_RunsImmediately(t *testing.T) {
	s, err := New(zerolog.Nop())
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.NewIntervalJob("warm", func(context.Context) error {
		runs.Add(1)
		return nil
	}, time.Hour, true))

	s.Start()
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWithRecover(t *testing.T) {
	s := &Scheduler{log: zerolog.Nop()}

	assert.NotPanics(t, func() {
		s.withRecover("boom", func(context.Context) error { panic("boom") })(context.Background())
	})
	assert.NotPanics(t, func() {
		s.withRecover("fail", func(context.Context) error { return errors.New("fail") })(context.Background())
	})
}
