package graph

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/smallnest/crawlgraph/log"
	"github.com/smallnest/crawlgraph/urlnorm"
)

const (
	// seedRadius is the circle radius for initial node placement.
	seedRadius = 80.0

	// placeholderDomain backs pages that carry neither URL nor source domain.
	placeholderDomain = "unknown.invalid"
)

// BuildInput is everything a rebuild consumes. Pages are the raw rows in
// feed order; only rows with indexed status become nodes, and only the first
// PagesIndexed of those are visible.
type BuildInput struct {
	Pages []Page
	Edges []Edge

	// PagesIndexed caps visibility: pages beyond this count are not shown
	// even if already fetched.
	PagesIndexed int

	// EdgesSynced is true once the first edge sync has completed, letting
	// the build distinguish "no edges yet" from "no edges exist".
	EdgesSynced bool

	// Domain synthesizes a URL for pages that lack one.
	Domain string

	// Width and Height locate the container center for seeding.
	Width, Height float64
}

// Builder turns pages and edges into a render-ready graph. It is stateless;
// carry-over comes from the previous build passed to Build.
type Builder struct {
	logger log.Logger
}

// NewBuilder creates a graph builder using the package default logger.
func NewBuilder() *Builder {
	return &Builder{logger: log.GetDefaultLogger()}
}

// NewBuilderWithLogger creates a graph builder with a custom logger for the
// dropped-edge diagnostics.
func NewBuilderWithLogger(logger log.Logger) *Builder {
	if logger == nil {
		logger = &log.NoOpLogger{}
	}
	return &Builder{logger: logger}
}

// ShouldRebuild reports whether in warrants a rebuild of prev: the visible
// page count changed, the indexed counter advanced, the edge count changed,
// or the first edge sync completed. Unrelated recomputations must not
// rebuild, or smooth transitions are lost.
func ShouldRebuild(prev *Graph, in BuildInput) bool {
	if prev == nil {
		return true
	}
	return prev.visiblePages != visibleCount(in) ||
		prev.pagesIndexed != in.PagesIndexed ||
		prev.edgeCount != len(in.Edges) ||
		prev.edgesSynced != in.EdgesSynced
}

// Build constructs a new graph from in, copying positions forward from prev
// for every node whose id survives so the simulation resumes instead of
// resetting.
func (b *Builder) Build(in BuildInput, prev *Graph) *Graph {
	if in.Width <= 0 {
		in.Width = 800
	}
	if in.Height <= 0 {
		in.Height = 600
	}

	visible := visiblePages(in)

	g := &Graph{
		BuildID:      uuid.NewString(),
		Nodes:        make([]*Node, 0, len(visible)),
		Links:        make([]Link, 0, len(in.Edges)),
		visiblePages: len(visible),
		pagesIndexed: in.PagesIndexed,
		edgeCount:    len(in.Edges),
		edgesSynced:  in.EdgesSynced,
		index:        make(map[string]*Node, len(visible)),
	}

	switch {
	case !in.EdgesSynced:
		g.EdgesState = EdgesPending
	case len(in.Edges) == 0:
		g.EdgesState = EdgesEmpty
	default:
		g.EdgesState = EdgesPopulated
	}

	urlToID := b.buildURLMap(visible, in.Domain)

	cx, cy := in.Width/2, in.Height/2
	for i, p := range visible {
		n := &Node{
			ID:     p.ID,
			Title:  p.Title,
			URL:    pageURL(p, in.Domain),
			Status: p.Status,
		}
		n.X, n.Y = seedPosition(i, len(visible), cx, cy)
		g.Nodes = append(g.Nodes, n)
		g.index[p.ID] = n
	}

	// Resolve edges: URL variants first, explicit page id as fallback.
	seen := make(map[string]struct{}, len(in.Edges))
	for _, e := range in.Edges {
		from := resolveEndpoint(e.FromURL, e.FromPageID, urlToID, g)
		to := resolveEndpoint(e.ToURL, e.ToPageID, urlToID, g)

		if from == "" || to == "" {
			b.logger.Debug("dropping unresolved edge %q -> %q", endpointLabel(e.FromURL, e.FromPageID), endpointLabel(e.ToURL, e.ToPageID))
			continue
		}
		if from == to {
			continue
		}
		key := from + "\x00" + to
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.Links = append(g.Links, Link{Source: from, Target: to})
	}

	// Carry positions forward so existing nodes do not jump. A drag in
	// progress survives the rebuild, keeping the pin invariant intact.
	if prev != nil {
		for _, n := range g.Nodes {
			if old, ok := prev.Node(n.ID); ok {
				n.X, n.Y = old.X, old.Y
				n.VX, n.VY = old.VX, old.VY
				n.FX, n.FY = old.FX, old.FY
			}
		}
	}

	return g
}

// buildURLMap maps every matching variant of each visible page's URL to its
// page id. The raw URL plus the four urlnorm variants give 4-6 keys per
// page; the first page to claim a key keeps it.
func (b *Builder) buildURLMap(visible []Page, domain string) map[string]string {
	m := make(map[string]string, len(visible)*5)
	for _, p := range visible {
		u := pageURL(p, domain)
		keys := append([]string{u}, urlnorm.Variants(u)...)
		for _, k := range keys {
			if k == "" {
				continue
			}
			if _, taken := m[k]; !taken {
				m[k] = p.ID
			}
		}
	}
	return m
}

// resolveEndpoint maps an edge endpoint to a visible node id, trying the
// URL variants first and the explicit page id second. Returns "" when the
// endpoint cannot be resolved to a visible node.
func resolveEndpoint(rawURL, pageID string, urlToID map[string]string, g *Graph) string {
	if rawURL != "" {
		for _, k := range urlnorm.Variants(rawURL) {
			if id, ok := urlToID[k]; ok {
				return id
			}
		}
	}
	if pageID != "" && g.HasNode(pageID) {
		return pageID
	}
	return ""
}

// seedPosition places node i of n deterministically: the first page (the
// crawl's starting page) sits at the container center, the rest on a circle
// evenly spaced by angle.
func seedPosition(i, n int, cx, cy float64) (float64, float64) {
	if i == 0 || n <= 1 {
		return cx, cy
	}
	angle := 2 * math.Pi * float64(i-1) / float64(n-1)
	return cx + seedRadius*math.Cos(angle), cy + seedRadius*math.Sin(angle)
}

// pageURL returns the page's URL, synthesizing https://{domain}{path} when
// the row has none.
func pageURL(p Page, domain string) string {
	if p.URL != "" {
		return p.URL
	}
	if domain == "" {
		domain = placeholderDomain
	}
	path := p.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("https://%s%s", domain, path)
}

// visiblePages returns the rows eligible to render: pages with indexed
// status, capped to the first PagesIndexed of them. Pending, crawling and
// error rows never become nodes.
func visiblePages(in BuildInput) []Page {
	limit := visibleCount(in)
	visible := make([]Page, 0, limit)
	for _, p := range in.Pages {
		if len(visible) == limit {
			break
		}
		if p.Status == PageStatusIndexed {
			visible = append(visible, p)
		}
	}
	return visible
}

func visibleCount(in BuildInput) int {
	indexed := 0
	for _, p := range in.Pages {
		if p.Status == PageStatusIndexed {
			indexed++
		}
	}
	n := in.PagesIndexed
	if n > indexed {
		n = indexed
	}
	if n < 0 {
		n = 0
	}
	return n
}

func endpointLabel(url, id string) string {
	if url != "" {
		return url
	}
	return "id:" + id
}
