package view

import (
	"math"
	"sync"
	"time"
)

// Transform is a 2D affine transform: model coordinates scale by K then
// translate by (X, Y) to reach screen space.
type Transform struct {
	K float64
	X float64
	Y float64
}

// Identity is the rest transform.
var Identity = Transform{K: 1}

// Config holds the viewport tunables. Zero values take the defaults below.
type Config struct {
	// MinScale and MaxScale bound K.
	MinScale float64
	MaxScale float64

	// StepIn and StepOut are the multiplicative zoom-button steps.
	StepIn  float64
	StepOut float64

	// EaseDuration bounds a zoom-button transition.
	EaseDuration time.Duration

	// WheelSensitivity divides the wheel delta when computing the zoom
	// factor.
	WheelSensitivity float64
}

func (c Config) withDefaults() Config {
	if c.MinScale == 0 {
		c.MinScale = 0.2
	}
	if c.MaxScale == 0 {
		c.MaxScale = 5
	}
	if c.StepIn == 0 {
		c.StepIn = 1.3
	}
	if c.StepOut == 0 {
		c.StepOut = 0.75
	}
	if c.EaseDuration == 0 {
		c.EaseDuration = 200 * time.Millisecond
	}
	if c.WheelSensitivity == 0 {
		c.WheelSensitivity = 500
	}
	return c
}

// Viewport wraps the pan/zoom transform of the graph canvas. Wheel gestures
// always zoom; drags pan only when they start on the background so node
// drags are never hijacked.
type Viewport struct {
	mu  sync.Mutex
	cfg Config
	t   Transform

	panning bool

	easeCancel chan struct{}
}

// NewViewport creates a viewport at the identity transform.
func NewViewport(cfg Config) *Viewport {
	return &Viewport{cfg: cfg.withDefaults(), t: Identity}
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.t
}

// ToModel converts a screen-space coordinate into model space under the
// current transform. The custom drag path uses this to place a dragged node
// under the cursor regardless of pan/zoom.
func (v *Viewport) ToModel(screenX, screenY float64) (float64, float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return (screenX - v.t.X) / v.t.K, (screenY - v.t.Y) / v.t.K
}

// Wheel applies a wheel-gesture zoom anchored at the cursor: the model point
// under (screenX, screenY) stays put while the scale changes.
func (v *Viewport) Wheel(deltaY, screenX, screenY float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	factor := 1.0 - math.Max(-0.5, math.Min(0.5, deltaY/v.cfg.WheelSensitivity))
	v.zoomAtLocked(v.t.K*factor, screenX, screenY)
}

// zoomAtLocked rescales around the given screen anchor. Callers hold v.mu.
func (v *Viewport) zoomAtLocked(newK, screenX, screenY float64) {
	newK = v.clamp(newK)
	wx := (screenX - v.t.X) / v.t.K
	wy := (screenY - v.t.Y) / v.t.K
	v.t.K = newK
	v.t.X = screenX - wx*newK
	v.t.Y = screenY - wy*newK
}

func (v *Viewport) clamp(k float64) float64 {
	if k < v.cfg.MinScale {
		return v.cfg.MinScale
	}
	if k > v.cfg.MaxScale {
		return v.cfg.MaxScale
	}
	return k
}

// PanStart begins a pan if the gesture started on the background. It returns
// whether the viewport claimed the gesture; a gesture on a node belongs to
// the pointer state machine instead.
func (v *Viewport) PanStart(onBackground bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panning = onBackground
	return v.panning
}

// Pan translates by the given screen-space delta while a pan is active.
func (v *Viewport) Pan(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.panning {
		return
	}
	v.t.X += dx
	v.t.Y += dy
}

// PanEnd releases an active pan. Safe to call when none is active.
func (v *Viewport) PanEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panning = false
}

// ZoomIn eases the scale up by the configured step, keeping the viewport
// center fixed.
func (v *Viewport) ZoomIn(centerX, centerY float64) {
	v.easeTo(v.Transform().K*v.cfg.StepIn, centerX, centerY)
}

// ZoomOut eases the scale down by the configured step.
func (v *Viewport) ZoomOut(centerX, centerY float64) {
	v.easeTo(v.Transform().K*v.cfg.StepOut, centerX, centerY)
}

// Reset returns to the identity transform immediately, cancelling any
// transition in flight.
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancelEaseLocked()
	v.t = Identity
}

// easeTo animates the scale toward target over EaseDuration with an
// ease-out curve. A newer transition overwrites a pending one; transitions
// are time-boxed and self-terminating, so there is no cancellation API.
func (v *Viewport) easeTo(target, centerX, centerY float64) {
	v.mu.Lock()
	v.cancelEaseLocked()
	target = v.clamp(target)
	startK := v.t.K
	cancel := make(chan struct{})
	v.easeCancel = cancel
	duration := v.cfg.EaseDuration
	v.mu.Unlock()

	go func() {
		const frame = 16 * time.Millisecond
		start := time.Now()
		ticker := time.NewTicker(frame)
		defer ticker.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-ticker.C:
				p := float64(time.Since(start)) / float64(duration)
				if p >= 1 {
					p = 1
				}
				eased := 1 - (1-p)*(1-p)
				k := startK + (target-startK)*eased
				v.mu.Lock()
				v.zoomAtLocked(k, centerX, centerY)
				v.mu.Unlock()
				if p >= 1 {
					return
				}
			}
		}
	}()
}

func (v *Viewport) cancelEaseLocked() {
	if v.easeCancel != nil {
		close(v.easeCancel)
		v.easeCancel = nil
	}
}
