package watch

import (
        "sync"
        "time"
)

// Debouncer coalesces bursts of Trigger calls into one run of fn after the
// quiet period. Triggers that arrive while fn runs schedule one more run.
type Debouncer struct {
        delay time.Duration
        fn    func()

        mu      sync.Mutex
        timer   *time.Timer
        pending bool
        running bool
        stopped bool
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
        if delay <= 0 {
                delay = 150 * time.Millisecond
        }
        return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Trigger() {
        d.mu.Lock()
        defer d.mu.Unlock()
        if d.stopped {
                return
        }
        d.pending = true
        if d.timer == nil {
                d.timer = time.AfterFunc(d.delay, d.onTimer)
                return
        }
        d.timer.Reset(d.delay)
}

func (d *Debouncer) onTimer() {
        d.mu.Lock()
        if d.running {
                if d.timer != nil {
                        d.timer.Reset(d.delay)
                }
                d.mu.Unlock()
                return
        }
        if !d.pending || d.stopped {
                d.mu.Unlock()
                return
        }
        d.pending = false
        d.running = true
        d.mu.Unlock()

        d.fn()

        d.mu.Lock()
        d.running = false
        if d.pending && !d.stopped && d.timer != nil {
                d.timer.Reset(d.delay)
        }
        d.mu.Unlock()
}

// Stop drops any pending run. A run already in progress finishes.
func (d *Debouncer) Stop() {
        d.mu.Lock()
        defer d.mu.Unlock()
        d.stopped = true
        d.pending = false
        if d.timer != nil {
                d.timer.Stop()
        }
}
