// CrawlGraph - An Incremental Knowledge-Graph Engine for Research-Chat Clients
//
// CrawlGraph turns the asynchronously arriving output of a remote crawler
// (page rows, hyperlink edges, job status) into a live, force-directed
// node-link diagram plus a human-facing progress snapshot. The crawler,
// indexer and answer generator are external collaborators; this module only
// observes their feeds and keeps the picture on screen coherent while data
// streams in.
//
// # Packages
//
//   - urlnorm: URL canonicalization for matching heterogeneous producers
//   - graph: node/link model and the incremental graph builder
//   - sim: force simulation (link, charge, center, collision, axis forces)
//   - view: zoom/pan viewport and the drag-vs-click pointer state machine
//   - progress: per-source crawl status / progress / phase derivation
//   - feed: typed change-notification event sources, polling and debouncing
//   - feed/redis: realtime push transport over Redis pub/sub
//   - engine: orchestrator wiring feeds into builder, simulation and progress
//   - log: leveled logging with an optional golog backend
//
// # Quick Start
//
//	src := feed.NewMemorySource()
//	eng := engine.New(engine.Config{SourceID: "docs", Domain: "example.com"})
//	defer eng.Close()
//
//	ctx := context.Background()
//	if err := eng.Start(ctx, src); err != nil {
//		panic(err)
//	}
//
//	src.Publish(feed.Event{
//		Type:     feed.EventPagesChanged,
//		SourceID: "docs",
//		Pages:    []graph.Page{{ID: "p1", URL: "https://example.com", Status: graph.PageStatusIndexed}},
//	})
//
//	snap := eng.Snapshot()
//	fmt.Println(len(snap.Nodes), len(snap.Links))
//
// See examples/stream_demo for a complete streaming walkthrough.
package crawlgraph
