package graph

// PageStatus is the lifecycle state of a crawled page, as reported by the
// external crawler.
type PageStatus string

const (
	// PageStatusPending means the page is queued but not yet fetched.
	PageStatusPending PageStatus = "pending"

	// PageStatusCrawling means the page is being fetched.
	PageStatusCrawling PageStatus = "crawling"

	// PageStatusIndexed means the page is fetched, extracted and searchable.
	// Only indexed pages become graph nodes.
	PageStatusIndexed PageStatus = "indexed"

	// PageStatusError means the crawler gave up on the page.
	PageStatusError PageStatus = "error"
)

// Page is a single crawled document belonging to a source. Rows are produced
// by the external crawler and delivered through the feed.
type Page struct {
	ID     string     `json:"id"`
	URL    string     `json:"url"`
	Title  string     `json:"title"`
	Path   string     `json:"path"`
	Status PageStatus `json:"status"`
}

// Edge is a directed hyperlink between two pages. Producers reference
// endpoints by page id or by raw URL, never guaranteed both.
type Edge struct {
	FromPageID string `json:"from_page_id,omitempty"`
	ToPageID   string `json:"to_page_id,omitempty"`
	FromURL    string `json:"from_url,omitempty"`
	ToURL      string `json:"to_url,omitempty"`
}

// Node is a rendered page in the diagram. Position and velocity belong to
// the simulation once a build is handed over; FX/FY are set if and only if
// the node is currently pinned by a drag.
type Node struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	URL    string     `json:"url"`
	Status PageStatus `json:"status"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`

	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// Pinned reports whether the node position is fixed by a drag.
func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Pin fixes the node at (x, y), overriding physics.
func (n *Node) Pin(x, y float64) {
	fx, fy := x, y
	n.FX, n.FY = &fx, &fy
	n.X, n.Y = x, y
}

// Unpin returns the node to free physics.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Link is a resolved, deduplicated edge between two visible nodes. Endpoints
// are node ids resolved through Graph.Node on demand; links never hold
// pointers into the node slice.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// EdgesState distinguishes "edges not fetched yet" from "no edges exist",
// which are indistinguishable from an empty edge list alone.
type EdgesState int

const (
	// EdgesPending means no edge sync has completed yet.
	EdgesPending EdgesState = iota

	// EdgesEmpty means a sync completed and the source has no edges.
	EdgesEmpty

	// EdgesPopulated means a sync completed and delivered edges.
	EdgesPopulated
)

// String returns the string representation of EdgesState.
func (s EdgesState) String() string {
	switch s {
	case EdgesPending:
		return "pending"
	case EdgesEmpty:
		return "empty"
	case EdgesPopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Graph is one build of the render-ready node/link set. Builds are replaced
// wholesale, never diffed field by field.
type Graph struct {
	// BuildID identifies this build; a new id is assigned per rebuild.
	BuildID string

	Nodes []*Node
	Links []Link

	// EdgesState reports whether the link set reflects a completed edge
	// sync. An empty link set with EdgesPending means "still loading", not
	// "no relationships".
	EdgesState EdgesState

	// Counts captured at build time, used by ShouldRebuild.
	visiblePages int
	pagesIndexed int
	edgeCount    int
	edgesSynced  bool

	index map[string]*Node
}

// Node returns the node with the given id, if present.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.index[id]
	return n, ok
}

// HasNode reports whether id is in the current visible node set.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}
