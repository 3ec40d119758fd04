package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/crawlgraph/feed"
	"github.com/smallnest/crawlgraph/graph"
	"github.com/smallnest/crawlgraph/progress"
	"github.com/smallnest/crawlgraph/sim"
)

// newTestEngine returns an engine with a frozen simulation loop and fast
// debouncing, attached to a fresh in-process source.
func newTestEngine(t *testing.T, cfg Config) (*Engine, *feed.MemorySource) {
	t.Helper()
	if cfg.SourceID == "" {
		cfg.SourceID = "s1"
	}
	if cfg.Sim.FrameInterval == 0 {
		cfg.Sim.FrameInterval = time.Hour
	}
	if cfg.DebounceQuiet == 0 {
		cfg.DebounceQuiet = 20 * time.Millisecond
	}
	if cfg.DebounceMaxWait == 0 {
		cfg.DebounceMaxWait = 100 * time.Millisecond
	}

	src := feed.NewMemorySource()
	e := New(cfg)
	require.NoError(t, e.Start(context.Background(), src))
	t.Cleanup(func() {
		e.Close()
		src.Close()
	})
	return e, src
}

func testPages(n int) []graph.Page {
	all := []graph.Page{
		{ID: "a", URL: "https://example.com/a", Title: "A", Status: graph.PageStatusIndexed},
		{ID: "b", URL: "https://example.com/b", Title: "B", Status: graph.PageStatusIndexed},
		{ID: "c", URL: "https://example.com/c", Title: "C", Status: graph.PageStatusIndexed},
	}
	return all[:n]
}

func waitNodes(t *testing.T, e *Engine, n int) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = e.Snapshot()
		return len(snap.Nodes) == n
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}

func TestEngine_PagesBuildGraph(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	src.PublishPages("s1", testPages(2))
	snap := waitNodes(t, e, 2)

	assert.NotEmpty(t, snap.BuildID)
	assert.Equal(t, graph.EdgesPending, snap.EdgesState, "no edge sync yet")
	assert.Empty(t, snap.Links)

	// First page seeds at the canvas center.
	assert.Equal(t, "a", snap.Nodes[0].ID)
	assert.Equal(t, 400.0, snap.Nodes[0].X)
	assert.Equal(t, 300.0, snap.Nodes[0].Y)

	p := e.Progress()
	assert.Equal(t, progress.StatusCrawling, p.Status)
	assert.Equal(t, 2, p.PagesIndexed)
}

func TestEngine_EdgesDebouncedAndTriState(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	src.PublishPages("s1", testPages(2))
	waitNodes(t, e, 2)

	// An explicit empty sync flips pending to empty.
	src.PublishEdges("s1", []graph.Edge{})
	require.Eventually(t, func() bool {
		return e.Snapshot().EdgesState == graph.EdgesEmpty
	}, 2*time.Second, 5*time.Millisecond)

	// A burst of identical syncs lands as one rebuild with one link.
	edges := []graph.Edge{{FromURL: "https://example.com/a", ToURL: "https://example.com/b"}}
	for i := 0; i < 10; i++ {
		src.PublishEdges("s1", edges)
	}
	require.Eventually(t, func() bool {
		snap := e.Snapshot()
		return snap.EdgesState == graph.EdgesPopulated && len(snap.Links) == 1
	}, 2*time.Second, 5*time.Millisecond)

	snap := e.Snapshot()
	assert.Equal(t, graph.Link{Source: "a", Target: "b"}, snap.Links[0])
}

func TestEngine_DragPinSurvivesRebuild(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	src.PublishPages("s1", testPages(2))
	snap := waitNodes(t, e, 2)

	// Second node seeds on the circle at angle 0.
	bx, by := snap.Nodes[1].X, snap.Nodes[1].Y
	assert.True(t, e.PointerDown(bx, by), "press on a node claims the gesture")
	e.PointerMove(555, 333) // past the drag threshold

	// A new page arrives mid-drag; the rebuild must keep the pin.
	src.PublishPages("s1", testPages(3))
	snap = waitNodes(t, e, 3)

	var b graph.Node
	for _, n := range snap.Nodes {
		if n.ID == "b" {
			b = n
		}
	}
	require.NotNil(t, b.FX, "pin carried across the rebuild")
	assert.Equal(t, 555.0, *b.FX)
	assert.Equal(t, 333.0, *b.FY)

	e.PointerUp()
	snap = e.Snapshot()
	for _, n := range snap.Nodes {
		assert.Nil(t, n.FX, "release clears the pin")
	}
}

func TestEngine_ReleaseRacingRebuildDropsPin(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	src.PublishPages("s1", testPages(2))
	snap := waitNodes(t, e, 2)

	// A release can land after the rebuild copies a drag's pin forward but
	// before the press is handed to the replacement node: the old node gets
	// unpinned, the copy keeps the pin, and no press is alive to ever clear
	// it. Reproduce the post-release half directly: a carried pin with the
	// pointer already idle.
	e.mu.Lock()
	b, ok := e.g.Node(snap.Nodes[1].ID)
	e.mu.Unlock()
	require.True(t, ok)
	e.sim.Read(func() { b.Pin(555, 333) })

	src.PublishPages("s1", testPages(3))
	snap = waitNodes(t, e, 3)
	for _, n := range snap.Nodes {
		assert.Nil(t, n.FX, "a pin without a live press must not survive a rebuild")
	}
}

func TestEngine_MergeReheatsInsteadOfRestarting(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	src.PublishPages("s1", testPages(2))
	waitNodes(t, e, 2)

	// Converge, then merge a new page.
	for i := 0; i < 300; i++ {
		e.sim.Step()
	}
	require.Less(t, e.sim.Alpha(), mergeAlpha)

	src.PublishPages("s1", testPages(3))
	waitNodes(t, e, 3)
	assert.InDelta(t, mergeAlpha, e.sim.Alpha(), 1e-9, "a merge reheats the settled layout instead of resetting it to full")
}

func TestEngine_BackgroundPressPans(t *testing.T) {
	e, src := newTestEngine(t, Config{})
	src.PublishPages("s1", testPages(1))
	waitNodes(t, e, 1)

	// Far from any node: background pan.
	assert.False(t, e.PointerDown(50, 50))
	e.PointerMove(80, 70)
	e.PointerUp()

	tr := e.Snapshot().Transform
	assert.Equal(t, 30.0, tr.X)
	assert.Equal(t, 20.0, tr.Y)
}

func TestEngine_Hover(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	_, ok := e.Hover(400, 300)
	assert.False(t, ok, "no graph yet")

	src.PublishPages("s1", testPages(2))
	waitNodes(t, e, 2)

	h, ok := e.Hover(403, 297)
	require.True(t, ok)
	assert.Equal(t, "a", h.Node.ID)
	assert.Equal(t, 403.0, h.ScreenX)
	assert.Equal(t, 297.0, h.ScreenY)

	_, ok = e.Hover(50, 50)
	assert.False(t, ok)
}

func TestEngine_ProgressFromJobFeed(t *testing.T) {
	e, src := newTestEngine(t, Config{Depth: progress.DepthShallow})

	src.PublishPages("s1", testPages(1))
	src.PublishCrawlJob("s1", &progress.CrawlJob{Status: progress.JobEncoding, IndexedCount: 3, EncodingChunksDone: 1, EncodingChunksTotal: 4})

	require.Eventually(t, func() bool {
		p := e.Progress()
		return p.PagesIndexed == 3 && p.PhaseLabel == "Indexing Crawled Pages"
	}, 2*time.Second, 5*time.Millisecond)

	p := e.Progress()
	assert.Equal(t, progress.StatusCrawling, p.Status)
	assert.Equal(t, 10, p.TotalPages)

	src.PublishCrawlJob("s1", &progress.CrawlJob{Status: progress.JobCompleted, IndexedCount: 3})
	require.Eventually(t, func() bool {
		return e.Progress().Status == progress.StatusReady
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngine_AddPageFreezesDenominator(t *testing.T) {
	e, src := newTestEngine(t, Config{Depth: progress.DepthDynamic})

	src.PublishPages("s1", testPages(2))
	src.PublishCrawlJob("s1", &progress.CrawlJob{Status: progress.JobCompleted, IndexedCount: 2})
	require.Eventually(t, func() bool {
		return e.Progress().Status == progress.StatusReady
	}, 2*time.Second, 5*time.Millisecond)

	src.PublishAddPageJob("s1", &progress.AddPageJob{Status: progress.JobRunning})
	require.Eventually(t, func() bool {
		p := e.Progress()
		return p.Status == progress.StatusCrawling && p.TotalPages == 3
	}, 2*time.Second, 5*time.Millisecond)

	// The new row lands before the job settles; denominator holds.
	src.PublishPages("s1", testPages(3))
	require.Eventually(t, func() bool {
		return e.Progress().PagesIndexed == 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, e.Progress().TotalPages)

	// Settling returns the source to ready.
	src.PublishAddPageJob("s1", nil)
	require.Eventually(t, func() bool {
		return e.Progress().Status == progress.StatusReady
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngine_FatalOnFailedEmptyCrawl(t *testing.T) {
	e, src := newTestEngine(t, Config{})

	src.PublishCrawlJob("s1", &progress.CrawlJob{Status: progress.JobFailed})
	require.Eventually(t, func() bool {
		p := e.Progress()
		return p.Status == progress.StatusError && p.Fatal
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEngine_IgnoresOtherSources(t *testing.T) {
	e, src := newTestEngine(t, Config{SourceID: "mine"})

	src.PublishPages("other", testPages(2))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, e.Snapshot().Nodes)

	src.PublishPages("mine", testPages(1))
	waitNodes(t, e, 1)
}

func TestEngine_CloseStopsEverything(t *testing.T) {
	cfg := Config{SourceID: "s1", Sim: sim.Config{FrameInterval: time.Millisecond}}
	src := feed.NewMemorySource()
	defer src.Close()

	e := New(cfg)
	require.NoError(t, e.Start(context.Background(), src))

	src.PublishPages("s1", testPages(2))
	waitNodes(t, e, 2)

	e.Close()
	e.Close() // idempotent

	// No more events are applied after close.
	src.PublishPages("s1", testPages(3))
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, e.Snapshot().Nodes, 2)
}
