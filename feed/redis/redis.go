package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/crawlgraph/feed"
	"github.com/smallnest/crawlgraph/log"
)

// Source implements feed.Source over Redis pub/sub. Each event type has its
// own prefixed channel; payloads are JSON-encoded feed.Event values. The
// crawler publishes, the graph client subscribes.
type Source struct {
	client *redis.Client
	prefix string
	logger log.Logger
}

// Options configuration for the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Channel prefix, default "crawlgraph:"
}

const defaultPrefix = "crawlgraph:"

// NewSource creates a pub/sub feed source connected to the given Redis.
func NewSource(opts Options) *Source {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewSourceFromClient(client, opts.Prefix)
}

// NewSourceFromClient wraps an existing client, for callers that need pool,
// cluster or sentinel configuration beyond Options.
func NewSourceFromClient(client *redis.Client, prefix string) *Source {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Source{
		client: client,
		prefix: prefix,
		logger: log.GetDefaultLogger(),
	}
}

func (s *Source) channel(t feed.EventType) string {
	return s.prefix + string(t)
}

func (s *Source) channels() []string {
	types := []feed.EventType{
		feed.EventPagesChanged,
		feed.EventEdgesChanged,
		feed.EventCrawlJobChanged,
		feed.EventAddPageJobChanged,
	}
	chans := make([]string, len(types))
	for i, t := range types {
		chans[i] = s.channel(t)
	}
	return chans
}

// Subscribe starts listening on all event channels. The returned channel
// closes when ctx is cancelled. Undecodable payloads are logged and skipped.
func (s *Source) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	pubsub := s.client.Subscribe(ctx, s.channels()...)

	// Wait for the subscription to be confirmed so events published right
	// after Subscribe returns are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to feed channels: %w", err)
	}

	out := make(chan feed.Event)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev feed.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					s.logger.Warn("feed: dropping undecodable event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Publish sends an event on the channel matching its type. Missing ID and
// Time fields are filled in before encoding.
func (s *Source) Publish(ctx context.Context, ev feed.Event) error {
	ev = feed.Stamp(ev)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal feed event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel(ev.Type), data).Err(); err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Source) Close() error {
	return s.client.Close()
}
