package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/smallnest/crawlgraph/feed"
	"github.com/smallnest/crawlgraph/graph"
	"github.com/smallnest/crawlgraph/log"
	"github.com/smallnest/crawlgraph/progress"
	"github.com/smallnest/crawlgraph/sim"
	"github.com/smallnest/crawlgraph/view"
)

// hitRadius is the screen-space pick distance for hover and pointer-down
// node hit tests.
const hitRadius = 16.0

// mergeAlpha is the temperature applied when an incremental merge replaces
// the node set: enough agitation to settle newcomers without restarting a
// converged layout from full heat.
const mergeAlpha = 0.5

// Config wires an engine to one source. Zero values take defaults.
type Config struct {
	// SourceID filters incoming events; empty accepts every source.
	SourceID string

	// Domain synthesizes URLs for pages that lack one.
	Domain string

	// Depth is the source's crawl depth, driving the progress denominator.
	Depth progress.Depth

	// Width and Height are the canvas dimensions in model units.
	Width, Height float64

	// Sim, Viewport and Pointer tune the owned subcomponents.
	Sim      sim.Config
	Viewport view.Config
	Pointer  view.PointerConfig

	// DebounceQuiet and DebounceMaxWait bound edge-burst coalescing.
	DebounceQuiet   time.Duration
	DebounceMaxWait time.Duration

	// OpenURL is invoked when a node is clicked; nil disables navigation.
	OpenURL func(url string)

	Logger log.Logger
}

// Snapshot is a render-ready copy of the current graph plus the viewport
// transform. Node and link values are copies; mutating them does not touch
// the live simulation.
type Snapshot struct {
	BuildID    string
	Nodes      []graph.Node
	Links      []graph.Link
	EdgesState graph.EdgesState
	Transform  view.Transform
}

// Hover is the tooltip payload for the node under the cursor.
type Hover struct {
	Node    graph.Node
	ScreenX float64
	ScreenY float64
}

// Engine owns the full pipeline for one source: it consumes feed events,
// debounces edge bursts, rebuilds the graph when the input warrants it,
// drives the force simulation, recomputes the progress snapshot, and routes
// pointer input to the viewport and drag disambiguator. All state mutation
// happens on the event loop or under the engine lock; readers get copies.
type Engine struct {
	cfg    Config
	logger log.Logger

	builder  *graph.Builder
	sim      *sim.Simulation
	viewport *view.Viewport
	pointer  *view.Pointer

	mu sync.Mutex

	pages        []graph.Page
	edges        []graph.Edge
	stagedEdges  []graph.Edge
	stagedSynced bool
	edgesSynced  bool

	job             *progress.CrawlJob
	addPage         *progress.AddPageJob
	addPageBaseline int

	g    *graph.Graph
	snap progress.Snapshot

	lastPointerX, lastPointerY float64

	debouncer *feed.Debouncer
	cancel    context.CancelFunc
	done      chan struct{}
	closed    bool
}

// New creates an engine. Call Start to attach it to a feed source.
func New(cfg Config) *Engine {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.Sim.Width == 0 {
		cfg.Sim.Width = cfg.Width
	}
	if cfg.Sim.Height == 0 {
		cfg.Sim.Height = cfg.Height
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		builder:  graph.NewBuilderWithLogger(logger),
		sim:      sim.New(cfg.Sim),
		viewport: view.NewViewport(cfg.Viewport),
		snap:     progress.Derive(progress.Input{Depth: cfg.Depth}),
	}
	e.pointer = view.NewPointer(cfg.Pointer, e.sim, e.viewport, cfg.OpenURL)
	e.debouncer = feed.NewDebouncer(cfg.DebounceQuiet, cfg.DebounceMaxWait, e.commitEdges)
	return e
}

// Start subscribes to src and processes events on a background goroutine
// until ctx is cancelled or Close is called.
func (e *Engine) Start(ctx context.Context, src feed.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	events, err := src.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	e.mu.Lock()
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				e.handle(ev)
			}
		}
	}()
	return nil
}

// handle applies one feed event. Exported state changes happen under the
// engine lock; the debouncer is triggered outside it so a synchronous flush
// cannot deadlock.
func (e *Engine) handle(ev feed.Event) {
	if e.cfg.SourceID != "" && ev.SourceID != "" && ev.SourceID != e.cfg.SourceID {
		return
	}

	trigger := false

	e.mu.Lock()
	switch ev.Type {
	case feed.EventPagesChanged:
		e.pages = ev.Pages
		e.recomputeLocked()
	case feed.EventEdgesChanged:
		e.stagedEdges = ev.Edges
		e.stagedSynced = true
		trigger = true
	case feed.EventCrawlJobChanged:
		e.job = ev.Job
		e.recomputeLocked()
	case feed.EventAddPageJobChanged:
		if ev.AddPage != nil && e.addPage == nil {
			// Freeze the denominator at the page count the operation
			// started with.
			e.addPageBaseline = len(e.pages)
		}
		e.addPage = ev.AddPage
		e.recomputeLocked()
	default:
		e.logger.Debug("engine: ignoring unknown event type %q", ev.Type)
	}
	e.mu.Unlock()

	if trigger {
		e.debouncer.Trigger()
	}
}

// commitEdges is the debouncer callback: it promotes the staged edge
// snapshot and rebuilds once per burst.
func (e *Engine) commitEdges() {
	e.mu.Lock()
	e.edges = e.stagedEdges
	e.edgesSynced = e.edgesSynced || e.stagedSynced
	e.recomputeLocked()
	e.mu.Unlock()
}

// recomputeLocked re-derives the progress snapshot and rebuilds the graph
// when the inputs warrant it. Callers hold e.mu.
func (e *Engine) recomputeLocked() {
	e.snap = progress.Derive(progress.Input{
		Job:             e.job,
		Pages:           e.pages,
		Depth:           e.cfg.Depth,
		AddPage:         e.addPage,
		AddPageBaseline: e.addPageBaseline,
	})

	in := graph.BuildInput{
		Pages:        e.pages,
		Edges:        e.edges,
		PagesIndexed: e.snap.PagesIndexed,
		EdgesSynced:  e.edgesSynced,
		Domain:       e.cfg.Domain,
		Width:        e.cfg.Width,
		Height:       e.cfg.Height,
	}
	if !graph.ShouldRebuild(e.g, in) {
		return
	}

	// Building reads positions out of the previous nodes while the frame
	// loop may be writing them; serialize with the integrator.
	first := e.g == nil
	e.sim.Read(func() {
		e.g = e.builder.Build(in, e.g)
	})
	if first {
		e.sim.Init(e.g.Nodes, e.g.Links)
	} else {
		e.sim.Rewire(e.g.Nodes, e.g.Links)
		e.sim.Reheat(mergeAlpha)
	}

	// A drag in flight follows its node into the new build; the carried
	// pin keeps the node under the cursor. A release can land between the
	// carry-over copy and the retarget, unpinning the discarded node while
	// the copy keeps its pin, so any pin without a live press is dropped.
	retargeted := false
	if cur := e.pointer.Node(); cur != nil {
		if n, ok := e.g.Node(cur.ID); ok {
			retargeted = e.pointer.Retarget(n)
		}
	}
	if !retargeted {
		e.sim.Read(func() {
			for _, n := range e.g.Nodes {
				if n.Pinned() {
					n.Unpin()
				}
			}
		})
	}
}

// Snapshot returns a deep copy of the current graph and transform, safe to
// hand to a renderer while the simulation keeps moving.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{Transform: e.viewport.Transform()}
	if e.g == nil {
		return snap
	}
	snap.BuildID = e.g.BuildID
	snap.EdgesState = e.g.EdgesState
	snap.Nodes = make([]graph.Node, len(e.g.Nodes))
	e.sim.Read(func() {
		for i, n := range e.g.Nodes {
			c := *n
			if n.FX != nil {
				fx := *n.FX
				c.FX = &fx
			}
			if n.FY != nil {
				fy := *n.FY
				c.FY = &fy
			}
			snap.Nodes[i] = c
		}
	})
	snap.Links = append([]graph.Link(nil), e.g.Links...)
	return snap
}

// Progress returns the current progress snapshot.
func (e *Engine) Progress() progress.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// OnFrame installs a callback fired after each simulation frame, typically
// the renderer's redraw request.
func (e *Engine) OnFrame(fn func()) {
	e.sim.OnTick(fn)
}

// Hover returns the tooltip payload for the node under the given screen
// coordinate, if any.
func (e *Engine) Hover(screenX, screenY float64) (Hover, bool) {
	n := e.nodeAt(screenX, screenY)
	if n == nil {
		return Hover{}, false
	}
	return Hover{Node: *n, ScreenX: screenX, ScreenY: screenY}, true
}

// nodeAt hit-tests the screen coordinate against the live nodes. The pick
// distance is screen-space, so it stays constant across zoom levels.
func (e *Engine) nodeAt(screenX, screenY float64) *graph.Node {
	mx, my := e.viewport.ToModel(screenX, screenY)
	k := e.viewport.Transform().K
	reach := hitRadius / k

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.g == nil {
		return nil
	}
	var best *graph.Node
	bestDist := reach
	e.sim.Read(func() {
		for _, n := range e.g.Nodes {
			d := math.Hypot(n.X-mx, n.Y-my)
			if d <= bestDist {
				best = n
				bestDist = d
			}
		}
	})
	return best
}

// PointerDown routes a press: a press on a node starts the drag/click state
// machine, anything else starts a background pan. It returns whether a node
// claimed the press.
func (e *Engine) PointerDown(screenX, screenY float64) bool {
	e.mu.Lock()
	e.lastPointerX, e.lastPointerY = screenX, screenY
	e.mu.Unlock()

	if n := e.nodeAt(screenX, screenY); n != nil {
		e.pointer.Down(n, screenX, screenY)
		return true
	}
	e.viewport.PanStart(true)
	return false
}

// PointerMove routes movement to whichever gesture is active.
func (e *Engine) PointerMove(screenX, screenY float64) {
	e.mu.Lock()
	dx := screenX - e.lastPointerX
	dy := screenY - e.lastPointerY
	e.lastPointerX, e.lastPointerY = screenX, screenY
	e.mu.Unlock()

	e.pointer.Move(screenX, screenY)
	e.viewport.Pan(dx, dy)
}

// PointerUp releases whichever gesture is active. Hosts must call it from a
// global listener so release is guaranteed even outside the canvas.
func (e *Engine) PointerUp() {
	e.pointer.Up()
	e.viewport.PanEnd()
}

// Wheel zooms at the cursor.
func (e *Engine) Wheel(deltaY, screenX, screenY float64) {
	e.viewport.Wheel(deltaY, screenX, screenY)
}

// ZoomIn eases one zoom step in around the canvas center.
func (e *Engine) ZoomIn() {
	e.viewport.ZoomIn(e.cfg.Width/2, e.cfg.Height/2)
}

// ZoomOut eases one zoom step out around the canvas center.
func (e *Engine) ZoomOut() {
	e.viewport.ZoomOut(e.cfg.Width/2, e.cfg.Height/2)
}

// ResetZoom snaps back to the identity transform.
func (e *Engine) ResetZoom() {
	e.viewport.Reset()
}

// Close tears the engine down: the event loop ends, pending debounces are
// discarded, the simulation stops and any in-flight drag is released.
// Idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	e.debouncer.Stop()
	e.pointer.Cancel()
	e.sim.Stop()
}
