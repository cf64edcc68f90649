package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every hour", func(context.Context) error { return nil })
	require.Error(t, err)

	_, err = New("0 * * * *", nil)
	require.Error(t, err)
}

func TestNextBeforeStart(t *testing.T) {
	s, err := New("0 * * * *", func(context.Context) error { return nil }, WithLogger(discard))
	require.NoError(t, err)

	next := s.Next()
	assert.Zero(t, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestRunsOnSchedule(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	s, err := New("@every 1s", func(context.Context) error {
		if calls.Add(1) == 1 {
			done <- struct{}{}
		}
		return errors.New("logged, not fatal")
	}, WithLogger(discard))
	require.NoError(t, err)

	s.Start(context.Background())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	<-s.Stop().Done()
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	s, err := New("@every 1s", func(context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}, WithLogger(discard))
	require.NoError(t, err)

	s.Start(context.Background())
	time.Sleep(3500 * time.Millisecond)
	close(release)
	<-s.Stop().Done()

	assert.Equal(t, int32(1), calls.Load(), "ticks during a running job are skipped")
}
