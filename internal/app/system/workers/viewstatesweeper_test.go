package workers

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSweeper struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (c *countingSweeper) Sweep(maxIdle time.Duration) int {
	c.calls.Add(1)
	c.maxIdle.Store(int64(maxIdle))
	return 1
}

func TestViewStateSweeper_SweepsUntilStopped(t *testing.T) {
	store := &countingSweeper{}
	w := NewViewStateSweeper(store, zap.NewNop(), 10*time.Millisecond, 30*time.Minute)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for store.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if store.calls.Load() < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", store.calls.Load())
	}
	if got := time.Duration(store.maxIdle.Load()); got != 30*time.Minute {
		t.Errorf("maxIdle = %v", got)
	}

	after := store.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if store.calls.Load() != after {
		t.Error("sweeper kept running after Stop")
	}
}

func TestViewStateSweeper_StopTwice(t *testing.T) {
	w := NewViewStateSweeper(&countingSweeper{}, zap.NewNop(), time.Hour, time.Minute)
	w.Start()
	w.Stop()
	w.Stop()
}
