// Package redis provides the Redis pub/sub transport for the feed layer.
//
// The crawler side publishes page, edge and job snapshots; the graph client
// subscribes and receives them as typed feed events. Each event type has its
// own channel under a configurable prefix:
//
//	{prefix}pages_changed
//	{prefix}edges_changed
//	{prefix}crawl_job_changed
//	{prefix}add_page_job_changed
//
// Payloads are JSON-encoded feed.Event values.
//
// # Basic Usage
//
//	src := redis.NewSource(redis.Options{
//		Addr:   "localhost:6379",
//		Prefix: "crawlgraph:", // optional, this is the default
//	})
//	defer src.Close()
//
//	events, err := src.Subscribe(ctx)
//	if err != nil {
//		return err
//	}
//	for ev := range events {
//		handle(ev)
//	}
//
// On the producer side:
//
//	err := src.Publish(ctx, feed.Event{
//		Type:     feed.EventPagesChanged,
//		SourceID: "source-1",
//		Pages:    pages,
//	})
//
// For pool, cluster or sentinel configuration build the client yourself and
// use NewSourceFromClient.
package redis
