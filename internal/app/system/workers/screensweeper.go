// internal/app/system/workers/screensweeper.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper is implemented by the screen registry.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// ScreenSweeper is a background worker that evicts idle screen sessions.
type ScreenSweeper struct {
	target   Sweeper
	log      *zap.Logger
	interval time.Duration
	idle     time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScreenSweeper returns a worker that calls target.Sweep(idle) every
// interval.
func NewScreenSweeper(target Sweeper, logger *zap.Logger, interval, idle time.Duration) *ScreenSweeper {
	return &ScreenSweeper{
		target:   target,
		log:      logger,
		interval: interval,
		idle:     idle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *ScreenSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("screen sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_timeout", w.idle))
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call more than once.
func (w *ScreenSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("screen sweeper stopped")
	})
}

func (w *ScreenSweeper) run() {
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

func (w *ScreenSweeper) sweep() {
	if n := w.target.Sweep(w.idle); n > 0 {
		w.log.Info("evicted idle screen sessions", zap.Int("count", n))
	}
}
