package feed

import (
	"context"
	"sync"
	"time"

	"github.com/smallnest/crawlgraph/log"
)

// DefaultPollInterval is the refetch cadence while a job is active.
const DefaultPollInterval = 2 * time.Second

// PollFunc fetches a snapshot from a collaborator. It reports settled=true
// once the underlying job has finished and polling should stop. Errors are
// logged and the poll retries at the next tick.
type PollFunc func(ctx context.Context) (settled bool, err error)

// Poller refetches a collaborator feed at a fixed interval while a job is
// active and stops on its own once the job settles. It backs the poll-based
// delivery path; push-based sources bypass it entirely.
type Poller struct {
	interval time.Duration
	logger   log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewPoller creates a poller with the given interval; zero means
// DefaultPollInterval.
func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, logger: log.GetDefaultLogger()}
}

// Start begins polling fn in a background goroutine, with an immediate first
// call. Polling ends when fn reports settled, ctx is cancelled, or Stop is
// called. Starting an already-running poller restarts it.
func (p *Poller) Start(ctx context.Context, fn PollFunc) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.running = true
	p.mu.Unlock()

	go func() {
		defer close(done)
		defer p.markStopped()

		if p.poll(ctx, fn) {
			return
		}
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.poll(ctx, fn) {
					return
				}
			}
		}
	}()
}

// poll runs one fetch and reports whether polling should end.
func (p *Poller) poll(ctx context.Context, fn PollFunc) bool {
	settled, err := fn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.logger.Warn("feed: poll failed, will retry: %v", err)
		return false
	}
	return settled
}

// Stop cancels an active poll and waits for the goroutine to exit. Safe to
// call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Running reports whether a poll loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) markStopped() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}
