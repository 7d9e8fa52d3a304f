// Package debounce collapses bursts of calls into one call made after a quiet
// period.
package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer runs the most recently triggered function once no trigger has
// arrived for the configured delay. It is safe for concurrent use.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu    sync.Mutex
	timer *clock.Timer
	fn    func()
	seq   uint64
}

func New(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{clock: clk, delay: delay}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger restarts the quiet period with fn as the pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq
	d.fn = fn
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq || d.fn == nil {
			d.mu.Unlock()
			return
		}
		run := d.fn
		d.fn = nil
		d.timer = nil
		d.mu.Unlock()
		run()
	})
}

// Cancel drops the pending call and reports whether one was pending. A timer
// that has already fired but not yet run is also prevented from running.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.fn != nil
	d.stopLocked()
	d.seq++
	return pending
}

// Flush runs the pending call immediately on the calling goroutine and
// reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	run := d.fn
	d.stopLocked()
	d.seq++
	d.mu.Unlock()

	if run == nil {
		return false
	}
	run()
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.fn = nil
}
