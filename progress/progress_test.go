package progress

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/crawlgraph/graph"
)

func pages(n int) []graph.Page {
	ps := make([]graph.Page, n)
	for i := range ps {
		ps[i] = graph.Page{ID: fmt.Sprintf("p%d", i), Status: graph.PageStatusIndexed}
	}
	return ps
}

func TestDerive_NoJobYet(t *testing.T) {
	snap := Derive(Input{Pages: pages(2), Depth: DepthShallow})
	assert.Equal(t, StatusCrawling, snap.Status)
	assert.True(t, snap.IsCrawling)
	assert.Equal(t, 2, snap.PagesIndexed, "existing rows must not regress to 0")
	assert.False(t, snap.Fatal)
}

func TestDerive_StatusMapping(t *testing.T) {
	cases := []struct {
		job  JobStatus
		want Status
	}{
		{JobQueued, StatusCrawling},
		{JobRunning, StatusCrawling},
		{JobIndexing, StatusCrawling},
		{JobEncoding, StatusCrawling},
		{JobCompleted, StatusReady},
		{JobFailed, StatusError},
	}
	for _, c := range cases {
		t.Run(string(c.job), func(t *testing.T) {
			snap := Derive(Input{Job: &CrawlJob{Status: c.job}, Pages: pages(1), Depth: DepthShallow})
			assert.Equal(t, c.want, snap.Status)
		})
	}
}

func TestDerive_AddPageForcesCrawling(t *testing.T) {
	// The add-page flow runs after the main crawl has completed.
	snap := Derive(Input{
		Job:             &CrawlJob{Status: JobCompleted, IndexedCount: 3},
		Pages:           pages(3),
		Depth:           DepthDynamic,
		AddPage:         &AddPageJob{Status: JobRunning},
		AddPageBaseline: 3,
	})
	assert.Equal(t, StatusCrawling, snap.Status)
	assert.True(t, snap.IsCrawling)
}

func TestDerive_PagesIndexedIsMax(t *testing.T) {
	// Counter ahead of rows.
	snap := Derive(Input{Job: &CrawlJob{Status: JobRunning, IndexedCount: 5}, Pages: pages(3), Depth: DepthShallow})
	assert.Equal(t, 5, snap.PagesIndexed)

	// Rows ahead of counter.
	snap = Derive(Input{Job: &CrawlJob{Status: JobRunning, IndexedCount: 2}, Pages: pages(4), Depth: DepthShallow})
	assert.Equal(t, 4, snap.PagesIndexed)
}

func TestDerive_MonotonicAcrossRecomputes(t *testing.T) {
	// Replay a crawl where the counter and the row inserts leapfrog; the
	// displayed count must never decrease.
	steps := []Input{
		{Pages: pages(0), Depth: DepthMedium},
		{Job: &CrawlJob{Status: JobQueued}, Pages: pages(0), Depth: DepthMedium},
		{Job: &CrawlJob{Status: JobRunning, IndexedCount: 2}, Pages: pages(1), Depth: DepthMedium},
		{Job: &CrawlJob{Status: JobRunning, IndexedCount: 2}, Pages: pages(3), Depth: DepthMedium},
		{Job: &CrawlJob{Status: JobEncoding, IndexedCount: 4}, Pages: pages(3), Depth: DepthMedium},
		{Job: &CrawlJob{Status: JobCompleted, IndexedCount: 4}, Pages: pages(4), Depth: DepthMedium},
	}
	prev := 0
	for i, in := range steps {
		snap := Derive(in)
		assert.GreaterOrEqual(t, snap.PagesIndexed, prev, "step %d", i)
		prev = snap.PagesIndexed
	}
}

func TestDerive_TotalPagesByDepth(t *testing.T) {
	for depth, want := range map[Depth]int{DepthShallow: 10, DepthMedium: 50, DepthDeep: 200} {
		snap := Derive(Input{Job: &CrawlJob{Status: JobRunning}, Pages: pages(2), Depth: depth})
		assert.Equal(t, want, snap.TotalPages, "depth %s", depth)
	}

	// Dynamic sources have no cap: denominator is the live page count.
	snap := Derive(Input{Job: &CrawlJob{Status: JobRunning}, Pages: pages(7), Depth: DepthDynamic})
	assert.Equal(t, 7, snap.TotalPages)
}

func TestDerive_AddPageFreezesDenominator(t *testing.T) {
	// The new page row lands before the job phase updates; the denominator
	// must hold at baseline+1 instead of flickering to rows+1.
	in := Input{
		Job:             &CrawlJob{Status: JobCompleted, IndexedCount: 2},
		Pages:           pages(3), // row already inserted
		Depth:           DepthDynamic,
		AddPage:         &AddPageJob{Status: JobRunning},
		AddPageBaseline: 2,
	}
	snap := Derive(in)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, 3, snap.PagesIndexed)
}

func TestDerive_TotalNeverBelowIndexed(t *testing.T) {
	// A crawl that overshoots its cap must not show >100%.
	snap := Derive(Input{Job: &CrawlJob{Status: JobRunning, IndexedCount: 12}, Pages: pages(12), Depth: DepthShallow})
	assert.Equal(t, 12, snap.TotalPages)
}

func TestDerive_EncodingPhaseLabels(t *testing.T) {
	in := Input{
		Job:   &CrawlJob{Status: JobEncoding, EncodingChunksDone: 3, EncodingChunksTotal: 5},
		Pages: pages(3),
		Depth: DepthShallow,
	}
	assert.Equal(t, "Indexing Crawled Pages", Derive(in).PhaseLabel)

	// Chunk encoding finished, discovered-link encoding underway.
	in.Job.EncodingChunksDone = 5
	in.Job.EncodingDiscoveredDone = 1
	in.Job.EncodingDiscoveredTotal = 4
	assert.Equal(t, "Encoding Discovered Pages", Derive(in).PhaseLabel)

	// Both complete: fall back to the generic label.
	in.Job.EncodingDiscoveredDone = 4
	assert.Equal(t, "Crawling", Derive(in).PhaseLabel)
}

func TestDerive_FallbackLabels(t *testing.T) {
	snap := Derive(Input{Job: &CrawlJob{Status: JobRunning}, Pages: pages(1), Depth: DepthShallow})
	assert.Equal(t, "Crawling", snap.PhaseLabel)

	snap = Derive(Input{Job: &CrawlJob{Status: JobRunning}, Pages: pages(1), Depth: DepthDynamic})
	assert.Equal(t, "Scraping Page", snap.PhaseLabel)

	snap = Derive(Input{Job: &CrawlJob{Status: JobRunning}, Pages: pages(1), Depth: DepthSingular})
	assert.Equal(t, "Scraping Page", snap.PhaseLabel)

	// Settled sources carry no phase label.
	snap = Derive(Input{Job: &CrawlJob{Status: JobCompleted}, Pages: pages(1), Depth: DepthShallow})
	assert.Empty(t, snap.PhaseLabel)
}

func TestDerive_FatalOnlyOnFailedWithZeroPages(t *testing.T) {
	snap := Derive(Input{Job: &CrawlJob{Status: JobFailed}, Depth: DepthShallow})
	assert.Equal(t, StatusError, snap.Status)
	assert.True(t, snap.Fatal)

	// Failure after some pages indexed is an error but not fatal.
	snap = Derive(Input{Job: &CrawlJob{Status: JobFailed}, Pages: pages(2), Depth: DepthShallow})
	assert.Equal(t, StatusError, snap.Status)
	assert.False(t, snap.Fatal)

	// Missing signals are never an error.
	snap = Derive(Input{Depth: DepthShallow})
	assert.Equal(t, StatusCrawling, snap.Status)
	assert.False(t, snap.Fatal)
}
