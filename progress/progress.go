package progress

import "github.com/smallnest/crawlgraph/graph"

// Status is the user-facing state of a source.
type Status string

const (
	StatusCrawling Status = "crawling"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

// JobStatus is the raw crawl-job status reported by the crawler.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobIndexing  JobStatus = "indexing"
	JobEncoding  JobStatus = "encoding"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Depth is the configured crawl depth of a source. Fixed-depth sources have
// a page cap used as the progress denominator; dynamic and singular sources
// do not.
type Depth string

const (
	DepthShallow  Depth = "shallow"
	DepthMedium   Depth = "medium"
	DepthDeep     Depth = "deep"
	DepthDynamic  Depth = "dynamic"
	DepthSingular Depth = "singular"
)

// pageCap returns the fixed page cap for the depth, or 0 when the depth has
// no cap.
func (d Depth) pageCap() int {
	switch d {
	case DepthShallow:
		return 10
	case DepthMedium:
		return 50
	case DepthDeep:
		return 200
	default:
		return 0
	}
}

func (d Depth) dynamic() bool {
	return d == DepthDynamic || d == DepthSingular
}

// CrawlJob is the crawl-job row for a source as delivered by the job feed.
type CrawlJob struct {
	Status                  JobStatus `json:"status"`
	IndexedCount            int       `json:"indexed_count"`
	DiscoveredCount         int       `json:"discovered_count"`
	EncodingChunksDone      int       `json:"encoding_chunks_done"`
	EncodingChunksTotal     int       `json:"encoding_chunks_total"`
	EncodingDiscoveredDone  int       `json:"encoding_discovered_done"`
	EncodingDiscoveredTotal int       `json:"encoding_discovered_total"`
}

// AddPageJob is the auxiliary job row present only while a user-initiated
// add-page operation targets the source.
type AddPageJob struct {
	Status JobStatus `json:"status"`
}

// Input collects the independent signals a snapshot is derived from. Any of
// Job and AddPage may be nil; Pages may be empty. The signals race with each
// other and none is authoritative on its own.
type Input struct {
	Job   *CrawlJob
	Pages []graph.Page
	Depth Depth

	// AddPage is set only while an add-page operation is outstanding
	// against this source.
	AddPage *AddPageJob

	// AddPageBaseline is the page count captured when the add-page
	// operation started. The denominator is frozen at baseline+1 for the
	// operation's duration so the bar does not flicker when the new row
	// lands before the job phase updates.
	AddPageBaseline int
}

// Snapshot is the derived progress state. It has no identity of its own;
// it is recomputed whenever any input changes and never stored.
type Snapshot struct {
	Status       Status
	PagesIndexed int
	TotalPages   int
	PhaseLabel   string
	IsCrawling   bool

	// Fatal marks the one condition that propagates out of the subsystem:
	// a first crawl that produced zero pages and an explicit failed job.
	Fatal bool
}

// Phase labels shown while a crawl is hot.
const (
	labelCrawling   = "Crawling"
	labelScraping   = "Scraping Page"
	labelIndexing   = "Indexing Crawled Pages"
	labelDiscovered = "Encoding Discovered Pages"
)

// Derive computes the progress snapshot from the raw signals. It is a pure
// function applying the rules in priority order; every caller that needs a
// status or a progress fraction goes through here so the derivation cannot
// drift between call sites.
func Derive(in Input) Snapshot {
	rows := len(in.Pages)
	addPageActive := in.AddPage != nil

	var snap Snapshot

	if in.Job == nil {
		// No job row yet. Degrade to crawling, but keep whatever pages
		// already arrived on the board.
		snap.Status = StatusCrawling
		snap.PagesIndexed = rows
	} else {
		switch in.Job.Status {
		case JobCompleted:
			snap.Status = StatusReady
		case JobFailed:
			snap.Status = StatusError
		default:
			snap.Status = StatusCrawling
		}
		// The job counter and the row inserts race; show whichever is
		// ahead so the count never steps backward.
		snap.PagesIndexed = max(in.Job.IndexedCount, rows)
	}

	// An add-page run can start after the main crawl completed; the source
	// is busy again for its duration.
	if addPageActive {
		snap.Status = StatusCrawling
	}

	snap.IsCrawling = snap.Status == StatusCrawling

	snap.TotalPages = deriveTotal(in, rows, addPageActive)
	if snap.TotalPages < snap.PagesIndexed {
		snap.TotalPages = snap.PagesIndexed
	}

	if snap.IsCrawling {
		snap.PhaseLabel = deriveLabel(in)
	}

	snap.Fatal = in.Job != nil && in.Job.Status == JobFailed && rows == 0

	return snap
}

func deriveTotal(in Input, rows int, addPageActive bool) int {
	if limit := in.Depth.pageCap(); limit > 0 {
		return limit
	}
	if addPageActive {
		return in.AddPageBaseline + 1
	}
	return rows
}

// deriveLabel picks the phase label for an active crawl. During the encode
// phase the two sub-progress pairs decide; outside it the label depends on
// whether the source is dynamic.
func deriveLabel(in Input) string {
	if in.Job != nil && in.Job.Status == JobEncoding {
		j := in.Job
		if j.EncodingChunksTotal > 0 && j.EncodingChunksDone < j.EncodingChunksTotal {
			return labelIndexing
		}
		if j.EncodingDiscoveredTotal > 0 && j.EncodingDiscoveredDone < j.EncodingDiscoveredTotal {
			return labelDiscovered
		}
	}
	if in.Depth.dynamic() {
		return labelScraping
	}
	return labelCrawling
}
