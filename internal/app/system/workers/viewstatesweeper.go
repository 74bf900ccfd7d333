// internal/app/system/workers/viewstatesweeper.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper is anything that can drop entries idle longer than maxIdle.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// ViewStateSweeper is a background worker that drops tracker snapshots
// nobody has looked at recently.
type ViewStateSweeper struct {
	store    Sweeper
	log      *zap.Logger
	interval time.Duration
	maxIdle  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewViewStateSweeper creates the worker.
//
// Parameters:
//   - store: the view-state store
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
//   - maxIdle: how long a snapshot may go untouched before it is dropped
func NewViewStateSweeper(store Sweeper, logger *zap.Logger, interval, maxIdle time.Duration) *ViewStateSweeper {
	return &ViewStateSweeper{
		store:    store,
		log:      logger,
		interval: interval,
		maxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ViewStateSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("view state sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_idle", w.maxIdle))
}

// Stop signals the worker to stop and waits for it to finish. Safe to
// call more than once.
func (w *ViewStateSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("view state sweeper stopped")
	})
}

func (w *ViewStateSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ViewStateSweeper) sweep() {
	if n := w.store.Sweep(w.maxIdle); n > 0 {
		w.log.Debug("dropped idle view state", zap.Int("count", n))
	}
}
