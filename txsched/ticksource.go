// txsched/ticksource.go
package txsched

import (
	"sync"
	"sync/atomic"
	"time"
)

// TickSource produces one callback per half-bit period while enabled.
// Enable and Disable are idempotent. Disable must take effect before the
// next half-bit boundary and is safe to call from inside the callback, so
// the encoder can stop the clock the instant a packet completes.
type TickSource interface {
	Enable()
	Disable()
}

// IntervalTicks is a TickSource driven by a wall-clock ticker on its own
// goroutine. The enabled flag is atomic: storing it from inside the handler
// suppresses the handler from the next tick onward without any locking.
type IntervalTicks struct {
	period  time.Duration
	handler func()
	enabled atomic.Bool
	stop    chan struct{}
	once    sync.Once
}

// NewIntervalTicks starts the tick goroutine disabled. handler runs on that
// goroutine once per period while enabled.
func NewIntervalTicks(period time.Duration, handler func()) *IntervalTicks {
	t := &IntervalTicks{period: period, handler: handler, stop: make(chan struct{})}
	go t.run()
	return t
}

func (t *IntervalTicks) run() {
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-tk.C:
			if t.enabled.Load() {
				t.handler()
			}
		}
	}
}

func (t *IntervalTicks) Enable()  { t.enabled.Store(true) }
func (t *IntervalTicks) Disable() { t.enabled.Store(false) }

// Close stops the tick goroutine for good. The source must not be reused.
func (t *IntervalTicks) Close() { t.once.Do(func() { close(t.stop) }) }
