package view

import (
	"math"
	"sync"
	"time"

	"github.com/smallnest/crawlgraph/graph"
	"github.com/smallnest/crawlgraph/sim"
)

// PointerState is the per-press state of the drag/click disambiguator.
type PointerState int

const (
	// PointerIdle means no press is in flight.
	PointerIdle PointerState = iota

	// PointerPressed means a press happened but has not moved past the
	// drag threshold.
	PointerPressed

	// PointerDragging means the press exceeded the threshold and the node
	// is being dragged.
	PointerDragging
)

// PointerConfig holds the disambiguation tunables.
type PointerConfig struct {
	// DragThreshold is the cumulative screen-space displacement (px) past
	// which a press becomes a drag. Zero tolerance would make dragging
	// impossible without triggering navigation.
	DragThreshold float64

	// ClickCooldown suppresses a trailing click event after a drag
	// release.
	ClickCooldown time.Duration
}

func (c PointerConfig) withDefaults() PointerConfig {
	if c.DragThreshold == 0 {
		c.DragThreshold = 6
	}
	if c.ClickCooldown == 0 {
		c.ClickCooldown = 50 * time.Millisecond
	}
	return c
}

// Pointer disambiguates click-to-open from drag on graph nodes. A node is
// both a draggable physics object and a clickable link; the press pins the
// node immediately so physics responds, and the threshold decides afterward
// whether the gesture was a click.
type Pointer struct {
	mu  sync.Mutex
	cfg PointerConfig

	sim      *sim.Simulation
	viewport *Viewport
	openURL  func(url string)

	state          PointerState
	node           *graph.Node
	startX, startY float64
	cooldownUntil  time.Time

	now func() time.Time
}

// NewPointer creates a pointer state machine feeding the given simulation
// and viewport. openURL is invoked on a click; nil disables navigation.
func NewPointer(cfg PointerConfig, s *sim.Simulation, vp *Viewport, openURL func(url string)) *Pointer {
	return &Pointer{
		cfg:      cfg.withDefaults(),
		sim:      s,
		viewport: vp,
		openURL:  openURL,
		now:      time.Now,
	}
}

// State returns the current disambiguation state.
func (p *Pointer) State() PointerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Down starts a press on node at the given screen coordinates. The node is
// pinned immediately so the simulation responds from the first move.
func (p *Pointer) Down(n *graph.Node, screenX, screenY float64) {
	if n == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = PointerPressed
	p.node = n
	p.startX, p.startY = screenX, screenY
	p.sim.DragStart(n)
}

// Move updates an in-flight press. Crossing the drag threshold promotes the
// press to a drag; while dragging, the screen coordinates are mapped into
// model space and fed to the simulation so the node tracks the cursor
// regardless of pan/zoom.
func (p *Pointer) Move(screenX, screenY float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case PointerIdle:
		return
	case PointerPressed:
		dx := screenX - p.startX
		dy := screenY - p.startY
		if math.Hypot(dx, dy) <= p.cfg.DragThreshold {
			return
		}
		p.state = PointerDragging
	}

	mx, my := p.viewport.ToModel(screenX, screenY)
	p.sim.Drag(p.node, mx, my)
}

// Up releases the press. A press that never became a drag is a click and
// opens the node's URL; a drag release clears the pin and starts the click
// cooldown so a trailing click event is swallowed. The caller must route
// pointer-up from global listeners, not element-scoped ones, so release is
// guaranteed even outside the canvas.
func (p *Pointer) Up() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == PointerIdle {
		return
	}

	n := p.node
	wasDrag := p.state == PointerDragging

	p.sim.DragEnd(n)
	p.state = PointerIdle
	p.node = nil

	if wasDrag {
		p.cooldownUntil = p.now().Add(p.cfg.ClickCooldown)
		return
	}

	if p.now().Before(p.cooldownUntil) {
		return
	}
	if p.openURL != nil && n.URL != "" {
		p.openURL(n.URL)
	}
}

// Node returns the node the in-flight press holds, or nil when idle.
func (p *Pointer) Node() *graph.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.node
}

// Retarget swaps the in-flight press onto a replacement node, keeping the
// gesture alive when the node array is rebuilt mid-drag. It reports whether
// a press was still in flight; false means a release already landed and the
// caller must not assume the replacement node is held.
func (p *Pointer) Retarget(n *graph.Node) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PointerIdle || n == nil {
		return false
	}
	p.node = n
	return true
}

// Cancel aborts an in-flight press without click semantics, releasing any
// pin. Used on teardown.
func (p *Pointer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PointerIdle {
		return
	}
	p.sim.DragEnd(p.node)
	p.state = PointerIdle
	p.node = nil
}
