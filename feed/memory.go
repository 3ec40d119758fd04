package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/smallnest/crawlgraph/graph"
	"github.com/smallnest/crawlgraph/log"
	"github.com/smallnest/crawlgraph/progress"
)

// ErrSourceClosed is returned by Subscribe after Close.
var ErrSourceClosed = errors.New("feed: source closed")

// subscriberBuffer bounds how far a slow consumer may fall behind before
// events are dropped.
const subscriberBuffer = 64

// MemorySource is an in-process Source with publish methods. It fans each
// published event out to every live subscriber. Tests and demos use it to
// inject synthetic event sequences; production wiring uses the redis
// transport instead.
type MemorySource struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool

	logger log.Logger
}

// NewMemorySource creates an empty in-process source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		subs:   make(map[int]chan Event),
		logger: log.GetDefaultLogger(),
	}
}

// Subscribe registers a consumer. The returned channel closes when ctx is
// cancelled or the source is closed.
func (m *MemorySource) Subscribe(ctx context.Context) (<-chan Event, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrSourceClosed
	}
	id := m.nextID
	m.nextID++
	ch := make(chan Event, subscriberBuffer)
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}()

	return ch, nil
}

// Publish delivers an event to all current subscribers. Missing ID and Time
// fields are filled in. Events to a subscriber whose buffer is full are
// dropped rather than blocking the producer.
func (m *MemorySource) Publish(e Event) {
	e = Stamp(e)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	subs := make([]chan Event, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			m.logger.Warn("feed: dropping %s event for slow subscriber", e.Type)
		}
	}
}

// PublishPages publishes a page-row snapshot for the source.
func (m *MemorySource) PublishPages(sourceID string, pages []graph.Page) {
	m.Publish(Event{Type: EventPagesChanged, SourceID: sourceID, Pages: pages})
}

// PublishEdges publishes an edge-row snapshot for the source.
func (m *MemorySource) PublishEdges(sourceID string, edges []graph.Edge) {
	m.Publish(Event{Type: EventEdgesChanged, SourceID: sourceID, Edges: edges})
}

// PublishCrawlJob publishes the crawl-job row for the source.
func (m *MemorySource) PublishCrawlJob(sourceID string, job *progress.CrawlJob) {
	m.Publish(Event{Type: EventCrawlJobChanged, SourceID: sourceID, Job: job})
}

// PublishAddPageJob publishes the add-page job row for the source; nil means
// the operation settled.
func (m *MemorySource) PublishAddPageJob(sourceID string, job *progress.AddPageJob) {
	m.Publish(Event{Type: EventAddPageJobChanged, SourceID: sourceID, AddPage: job})
}

// Close closes all subscriber channels. Further Publish calls are no-ops and
// further Subscribe calls fail.
func (m *MemorySource) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}
