package feed

import (
	"sync"
	"time"
)

// Edge-burst coalescing defaults: a burst is flushed at the latest
// MaxWait after its first event, or Quiet after its last one, whichever
// comes first.
const (
	DefaultDebounceQuiet   = 800 * time.Millisecond
	DefaultDebounceMaxWait = 1200 * time.Millisecond
)

// Debouncer coalesces a burst of triggers into a single callback. Edge
// inserts in particular can arrive in bursts of hundreds; rebuilding the
// graph once per burst bounds the handling cost.
type Debouncer struct {
	quiet   time.Duration
	maxWait time.Duration
	fn      func()

	mu         sync.Mutex
	timer      *time.Timer
	burstStart time.Time
	pending    bool
	stopped    bool
}

// NewDebouncer creates a debouncer invoking fn once per burst. Zero
// durations take the defaults.
func NewDebouncer(quiet, maxWait time.Duration, fn func()) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultDebounceQuiet
	}
	if maxWait <= 0 {
		maxWait = DefaultDebounceMaxWait
	}
	return &Debouncer{quiet: quiet, maxWait: maxWait, fn: fn}
}

// Trigger records one event of a burst. The callback fires after the quiet
// period elapses with no further triggers, but no later than the max-wait
// window measured from the burst's first trigger.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	now := time.Now()
	if !d.pending {
		d.pending = true
		d.burstStart = now
	}

	delay := d.quiet
	if remaining := d.burstStart.Add(d.maxWait).Sub(now); remaining < delay {
		delay = remaining
	}
	if delay <= 0 {
		d.pending = false
		d.stopTimerLocked()
		d.mu.Unlock()
		d.fn()
		return
	}

	d.stopTimerLocked()
	d.timer = time.AfterFunc(delay, d.fire)
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Flush fires a pending burst immediately. No-op when nothing is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.stopTimerLocked()
	d.mu.Unlock()
	d.fn()
}

// Stop discards any pending burst and ignores further triggers. Used on
// teardown.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	d.stopTimerLocked()
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
