package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) Cleanup(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestSweeperRunsOnInterval(t *testing.T) {
	c := &countingCleaner{}
	s := NewSweeper("captcha", c, 10*time.Millisecond, zap.NewNop())
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	if c.calls.Load() < 3 {
		t.Fatalf("Cleanup called %d times, want at least 3", c.calls.Load())
	}

	after := c.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if c.calls.Load() != after {
		t.Errorf("sweeper kept running after Stop()")
	}
	s.Stop() // second Stop is a no-op
}

func TestSweeperSurvivesErrorsAndCancel(t *testing.T) {
	c := &countingCleaner{err: errors.New("store down")}
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSweeper("captcha", c, 5*time.Millisecond, zap.NewNop())
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	s.Stop()
	if c.calls.Load() < 2 {
		t.Errorf("sweeper stopped after the first error")
	}
}

func TestNewLogger(t *testing.T) {
	for _, production := range []bool{true, false} {
		if NewLogger(production) == nil {
			t.Errorf("NewLogger(%v) = nil", production)
		}
	}
}
