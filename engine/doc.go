// Package engine assembles the full incremental knowledge-graph pipeline
// for one crawl source.
//
// An Engine subscribes to a feed.Source and, per event: stores the new page,
// edge or job snapshot; coalesces edge bursts through a debouncer; rebuilds
// the graph via graph.Builder only when the visible input actually changed
// (carrying node positions forward); hands the new arrays to the force
// simulation, starting the loop on the first build and reheating the settled
// layout on later merges; and re-derives the progress snapshot. Pointer and wheel input
// is routed to the owned viewport and drag/click disambiguator.
//
// Readers never see live simulation state: Snapshot returns copies, and the
// renderer drives itself from OnFrame.
//
// # Usage
//
//	eng := engine.New(engine.Config{
//		SourceID: "source-1",
//		Domain:   "example.com",
//		Depth:    progress.DepthMedium,
//		Width:    800,
//		Height:   600,
//		OpenURL:  browser.Open,
//	})
//	defer eng.Close()
//
//	if err := eng.Start(ctx, source); err != nil {
//		return err
//	}
//	eng.OnFrame(func() {
//		render(eng.Snapshot(), eng.Progress())
//	})
package engine
