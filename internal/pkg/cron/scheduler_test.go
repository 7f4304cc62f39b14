package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnce_RunsEveryJobDespiteFailures(t *testing.T) {
	s := NewScheduler()

	var ran atomic.Int32
	s.AddJob("counts", time.Hour, func(_ context.Context) error {
		ran.Add(1)
		return nil
	})
	s.AddJob("fails", time.Hour, func(_ context.Context) error {
		ran.Add(1)
		return errors.New("store gone")
	})
	s.AddJob("counts_again", time.Hour, func(_ context.Context) error {
		ran.Add(1)
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, int32(3), ran.Load())
}

func TestStart_RunsImmediatelyAndStopsCleanly(t *testing.T) {
	s := NewScheduler()

	done := make(chan struct{})
	var once sync.Once
	s.AddJob("immediate", time.Hour, func(_ context.Context) error {
		once.Do(func() { close(done) })
		return nil
	})

	s.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
