package feed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/crawlgraph/graph"
	"github.com/smallnest/crawlgraph/progress"
)

// EventType identifies which collaborator signal changed.
type EventType string

const (
	// EventPagesChanged carries a fresh snapshot of the page rows.
	EventPagesChanged EventType = "pages_changed"

	// EventEdgesChanged carries a fresh snapshot of the edge rows.
	EventEdgesChanged EventType = "edges_changed"

	// EventCrawlJobChanged carries the crawl-job row.
	EventCrawlJobChanged EventType = "crawl_job_changed"

	// EventAddPageJobChanged carries the add-page job row; a nil AddPage
	// payload means the operation settled and is no longer outstanding.
	EventAddPageJobChanged EventType = "add_page_job_changed"
)

// Event is a typed change notification from a collaborator feed. Payload
// fields are full row snapshots, not deltas; only the field matching Type is
// populated.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	SourceID string    `json:"source_id"`
	Time     time.Time `json:"time"`

	Pages   []graph.Page         `json:"pages,omitempty"`
	Edges   []graph.Edge         `json:"edges,omitempty"`
	Job     *progress.CrawlJob   `json:"job,omitempty"`
	AddPage *progress.AddPageJob `json:"add_page,omitempty"`
}

// Stamp fills in identity fields the producer left empty. Transports call
// it before handing an event to subscribers.
func Stamp(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	return e
}

// Source is a stream of change notifications. Subscribe returns a channel
// that delivers events until ctx is cancelled or the source closes; the
// channel is closed in either case.
type Source interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}
