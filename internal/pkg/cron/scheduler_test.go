package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBoundary(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), nextBoundary(at, time.Hour))

	onTheHour := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), nextBoundary(onTheHour, time.Hour))
}

func TestExecute_RecoversPanic(t *testing.T) {
	s := NewScheduler()

	err := s.execute(context.Background(), entry{name: "boom", task: func(ctx context.Context) error {
		panic("bad row")
	}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad row")
}

func TestExecute_ReturnsTaskError(t *testing.T) {
	s := NewScheduler()
	want := errors.New("db down")

	err := s.execute(context.Background(), entry{name: "fails", task: func(ctx context.Context) error { return want }})

	assert.ErrorIs(t, err, want)
}

func TestScheduler_FiresOnBoundary(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{}, 1)
	s.AddJob("fast", 20*time.Millisecond, func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("job never fired")
	}
}

func TestScheduler_StopBeforeFirstTick(t *testing.T) {
	s := NewScheduler()
	called := false
	s.AddJob("hourly", time.Hour, func(ctx context.Context) error {
		called = true
		return nil
	})

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.False(t, called)
}
