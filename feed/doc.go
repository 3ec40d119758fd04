// Package feed models the collaborator data streams as an explicit event
// source instead of ambient subscriptions mutating shared state. Everything
// downstream (graph rebuilds, progress snapshots) consumes typed Event
// values, which lets tests inject synthetic event sequences.
//
// Source is the one interface: Subscribe returns a channel of events.
// MemorySource is the in-process implementation with publish methods;
// the redis subpackage provides the pub/sub transport for real deployments.
//
// Two delivery helpers cover the poll path and the burst problem:
//
//   - Poller refetches a collaborator snapshot every ~2s while a job is
//     active and stops on its own once the job settles.
//   - Debouncer coalesces event bursts (edge inserts arrive in bursts of
//     hundreds) into one callback per ~1.2s window, flushed 0.8s after the
//     last event.
//
// Example:
//
//	src := feed.NewMemorySource()
//	events, _ := src.Subscribe(ctx)
//	go func() {
//		for ev := range events {
//			handle(ev)
//		}
//	}()
//	src.PublishPages("source-1", pages)
package feed
