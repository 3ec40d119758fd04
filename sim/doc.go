// Package sim is the force-directed physics integrator behind the graph
// view.
//
// Five forces act each frame: a link spring pulling connected nodes toward a
// target separation, pairwise charge repulsion clamped to a min/max
// interaction distance, a weak centering pull, a soft collision separation,
// and very weak independent axis pulls that dampen oscillation. Temperature
// (alpha) relaxes exponentially toward a target and velocities are damped,
// so the layout settles instead of oscillating forever.
//
// The integrator runs to convergence after every data change and one step
// per frame while hot. Init replaces the node/link arrays and restarts the
// loop (stopping any prior one - there are never two concurrent
// integrators); Rewire swaps the arrays into a running loop without touching
// the temperature; Reheat raises the target temperature briefly so merged-in
// nodes find their place; the DragStart/Drag/DragEnd protocol pins a node
// (fx/fy) for the duration of a drag and releases it on end. Stop halts the
// loop and must be called on teardown.
//
// An empty node set is a no-op, not an error, and stopping twice is safe.
package sim
