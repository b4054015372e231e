package workers

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	idle  atomic.Int64
}

func (c *countingSweeper) Sweep(idle time.Duration) int {
	c.calls.Add(1)
	c.idle.Store(int64(idle))
	return 1
}

func TestScreenSweeper_RunsUntilStopped(t *testing.T) {
	target := &countingSweeper{}
	w := NewScreenSweeper(target, zap.NewNop(), 5*time.Millisecond, time.Hour)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for target.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if target.calls.Load() < 2 {
		t.Fatalf("expected at least two sweeps, got %d", target.calls.Load())
	}
	if time.Duration(target.idle.Load()) != time.Hour {
		t.Errorf("idle = %v", time.Duration(target.idle.Load()))
	}

	after := target.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if target.calls.Load() != after {
		t.Error("sweeper kept running after Stop")
	}
}
