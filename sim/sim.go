package sim

import (
	"math"
	"sync"
	"time"

	"github.com/smallnest/crawlgraph/graph"
)

// Config holds the force tunables. Zero values are replaced by the defaults
// below, which keep tens of nodes readable without per-graph tuning.
type Config struct {
	// LinkDistance is the target separation of connected nodes.
	LinkDistance float64
	// LinkStrength scales the pull toward LinkDistance.
	LinkStrength float64

	// ChargeStrength is the many-body repulsion (negative repels).
	ChargeStrength float64
	// ChargeDistanceMin clamps the minimum interaction distance,
	// preventing singularities when nodes overlap.
	ChargeDistanceMin float64
	// ChargeDistanceMax keeps repulsion local on larger graphs.
	ChargeDistanceMax float64

	// CenterStrength pulls the whole layout toward the canvas center.
	CenterStrength float64

	// CollisionRadius is the minimum node separation.
	CollisionRadius float64
	// CollisionStrength applies the separation only partially, so the
	// layout does not turn into a rigid-body solve.
	CollisionStrength float64

	// AxisStrength is the independent x/y pull toward center that dampens
	// oscillation.
	AxisStrength float64

	// AlphaDecay controls how fast the temperature relaxes toward the
	// target; VelocityDecay damps motion each step.
	AlphaDecay    float64
	VelocityDecay float64
	// AlphaMin is the rest threshold: below it (with a zero target) the
	// integrator coasts.
	AlphaMin float64

	// DragAlphaTarget is the temperature held while a node is dragged, so
	// neighbors respond live.
	DragAlphaTarget float64

	// ReheatRelax is how long a Reheat keeps the raised target before
	// relaxing it back to zero.
	ReheatRelax time.Duration

	// FrameInterval is the tick period of the background loop.
	FrameInterval time.Duration

	// Width and Height locate the canvas center.
	Width, Height float64
}

func (c Config) withDefaults() Config {
	if c.LinkDistance == 0 {
		c.LinkDistance = 100
	}
	if c.LinkStrength == 0 {
		c.LinkStrength = 0.2
	}
	if c.ChargeStrength == 0 {
		c.ChargeStrength = -180
	}
	if c.ChargeDistanceMin == 0 {
		c.ChargeDistanceMin = 25
	}
	if c.ChargeDistanceMax == 0 {
		c.ChargeDistanceMax = 300
	}
	if c.CenterStrength == 0 {
		c.CenterStrength = 0.03
	}
	if c.CollisionRadius == 0 {
		c.CollisionRadius = 28
	}
	if c.CollisionStrength == 0 {
		c.CollisionStrength = 0.6
	}
	if c.AxisStrength == 0 {
		c.AxisStrength = 0.015
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = 0.02
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = 0.25
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = 0.001
	}
	if c.DragAlphaTarget == 0 {
		c.DragAlphaTarget = 0.2
	}
	if c.ReheatRelax == 0 {
		c.ReheatRelax = 300 * time.Millisecond
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = 16 * time.Millisecond
	}
	if c.Width == 0 {
		c.Width = 800
	}
	if c.Height == 0 {
		c.Height = 600
	}
	return c
}

// Simulation is a continuous physics integrator over the current node/link
// arrays. It owns position and velocity fields between builds; callers hand
// it a fresh array on every rebuild via Init and read positions back through
// the shared node pointers.
type Simulation struct {
	mu  sync.Mutex
	cfg Config

	nodes []*graph.Node
	links []graph.Link

	alpha       float64
	alphaTarget float64

	running    bool
	stop       chan struct{}
	relaxTimer *time.Timer

	// onTick, when set, fires after every frame step while the loop runs.
	onTick func()
}

// New creates a simulation with the given config.
func New(cfg Config) *Simulation {
	return &Simulation{cfg: cfg.withDefaults()}
}

// OnTick installs a callback fired after each background frame step.
// Must be called before Start.
func (s *Simulation) OnTick(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// Init (re)starts the integrator over the given arrays: any prior running
// loop is stopped first, the temperature resets to 1, and a new frame loop
// begins. An empty node set is accepted and simply has nothing to move.
func (s *Simulation) Init(nodes []*graph.Node, links []graph.Link) {
	s.Stop()

	s.mu.Lock()
	s.nodes = nodes
	s.links = links
	s.alpha = 1
	s.alphaTarget = 0
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	interval := s.cfg.FrameInterval
	s.mu.Unlock()

	go s.loop(stop, interval)
}

// Rewire swaps in a rebuilt node/link set without restarting the frame loop
// or resetting the temperature, so an incremental merge agitates the layout
// only as much as the caller reheats it. Falls back to Init when no loop is
// running.
func (s *Simulation) Rewire(nodes []*graph.Node, links []graph.Link) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.Init(nodes, links)
		return
	}
	s.nodes = nodes
	s.links = links
	s.mu.Unlock()
}

func (s *Simulation) loop(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Step()
			s.mu.Lock()
			fn := s.onTick
			s.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}

// Stop halts the integrator and any pending reheat relax. Stopping an
// already-stopped simulation is a no-op.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relaxTimer != nil {
		s.relaxTimer.Stop()
		s.relaxTimer = nil
	}
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
}

// Running reports whether the frame loop is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Read runs fn under the integrator's lock, giving callers a consistent view
// of node positions between frame steps. fn must not call back into the
// simulation.
func (s *Simulation) Read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Reheat raises the target temperature to alpha so newly merged nodes settle
// into place, then relaxes the target back to zero after the configured
// delay. A newer Reheat simply overwrites the pending relax.
func (s *Simulation) Reheat(alpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alphaTarget = alpha
	if s.alpha < alpha {
		s.alpha = alpha
	}

	if s.relaxTimer != nil {
		s.relaxTimer.Stop()
	}
	s.relaxTimer = time.AfterFunc(s.cfg.ReheatRelax, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.alphaTarget = 0
	})
}

// DragStart pins the node at its current position and raises the target
// temperature so neighbors respond while the drag lasts.
func (s *Simulation) DragStart(n *graph.Node) {
	if n == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.Pin(n.X, n.Y)
	s.alphaTarget = s.cfg.DragAlphaTarget
	if s.alpha < s.cfg.DragAlphaTarget {
		s.alpha = s.cfg.DragAlphaTarget
	}
}

// Drag moves a pinned node to the model-space position (x, y).
func (s *Simulation) Drag(n *graph.Node, x, y float64) {
	if n == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.Pin(x, y)
}

// DragEnd releases the pin and the temperature target, returning the node to
// free physics.
func (s *Simulation) DragEnd(n *graph.Node) {
	if n == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.Unpin()
	s.alphaTarget = 0
}

// Step advances the integrator one frame. It is safe to call directly (tests
// drive it synchronously); the background loop calls it once per frame.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.nodes) == 0 {
		return
	}

	// Exponential relaxation of the temperature toward its target.
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	if s.alpha < s.cfg.AlphaMin && s.alphaTarget == 0 {
		return
	}

	s.applyLinkForce()
	s.applyChargeForce()
	s.applyCenterForces()
	s.applyCollisionForce()
	s.integrate()
}

func (s *Simulation) applyLinkForce() {
	byID := make(map[string]*graph.Node, len(s.nodes))
	for _, n := range s.nodes {
		byID[n.ID] = n
	}
	for _, l := range s.links {
		a, ok1 := byID[l.Source]
		b, ok2 := byID[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		dx := b.X - a.X
		dy := b.Y - a.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}
		diff := (dist - s.cfg.LinkDistance) / dist
		k := s.cfg.LinkStrength * s.alpha
		fx := k * diff * dx
		fy := k * diff * dy
		a.VX += fx
		a.VY += fy
		b.VX -= fx
		b.VY -= fy
	}
}

func (s *Simulation) applyChargeForce() {
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			if dist > s.cfg.ChargeDistanceMax {
				continue
			}
			if dist < s.cfg.ChargeDistanceMin {
				dist = s.cfg.ChargeDistanceMin
			}
			// Negative strength repels; force falls off with distance
			// squared like a point charge.
			f := s.cfg.ChargeStrength * s.alpha / (dist * dist)
			nx, ny := dx/dist, dy/dist
			a.VX += f * nx
			a.VY += f * ny
			b.VX -= f * nx
			b.VY -= f * ny
		}
	}
}

func (s *Simulation) applyCenterForces() {
	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	for _, n := range s.nodes {
		n.VX += (cx - n.X) * s.cfg.CenterStrength * s.alpha
		n.VY += (cy - n.Y) * s.cfg.CenterStrength * s.alpha

		// Weak independent axis pulls dampen oscillation.
		n.VX += (cx - n.X) * s.cfg.AxisStrength * s.alpha
		n.VY += (cy - n.Y) * s.cfg.AxisStrength * s.alpha
	}
}

func (s *Simulation) applyCollisionForce() {
	minSep := s.cfg.CollisionRadius
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			if dist >= minSep {
				continue
			}
			if dist == 0 {
				// Coincident nodes get a tiny deterministic nudge.
				dx, dy, dist = 0.1, 0.1, math.Hypot(0.1, 0.1)
			}
			overlap := (minSep - dist) / dist * s.cfg.CollisionStrength / 2
			fx := dx * overlap
			fy := dy * overlap
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}
}

func (s *Simulation) integrate() {
	decay := 1 - s.cfg.VelocityDecay
	for _, n := range s.nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= decay
		n.VY *= decay
		n.X += n.VX
		n.Y += n.VY
	}
}
