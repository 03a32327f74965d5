package notify

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of change tokens into a single callback.
//
// Each Trigger restarts the delay timer; when the timer expires the
// callback fires once with the most recent token. Cancellation on a new
// trigger is part of the contract, not an optimization: N triggers inside
// the window must produce exactly one callback.
//
// Thread-safety: all methods are safe for concurrent use. The callback is
// never invoked concurrently with itself from the same Debouncer.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	last     ChangeToken
	seq      uint64 // detects stale timer callbacks
	callback func(ChangeToken)
}

// NewDebouncer creates a debouncer that invokes callback with the last
// token seen, once no trigger has arrived for delay.
func NewDebouncer(delay time.Duration, callback func(ChangeToken)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Trigger schedules (or reschedules) the callback with this token.
// The last token before the quiet period wins.
func (d *Debouncer) Trigger(token ChangeToken) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.last = token
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending && d.seq == currentSeq && d.callback != nil {
			d.pending = false
			token := d.last
			d.mu.Unlock()
			d.callback(token)
			return
		}
		d.mu.Unlock()
	})
}

// Flush fires the callback immediately if a trigger is pending,
// canceling the scheduled delivery.
func (d *Debouncer) Flush() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if d.pending && d.callback != nil {
		d.pending = false
		token := d.last
		d.mu.Unlock()
		d.callback(token)
		return
	}
	d.mu.Unlock()
}

// Cancel discards any pending delivery.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a delivery is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
