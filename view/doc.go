// Package view holds the interaction layer between pointer input and the
// graph: the pan/zoom viewport and the drag/click disambiguator.
//
// Viewport wraps a single affine transform (scale plus translate) with
// scale bounds of [0.2, 5]. Wheel gestures always zoom, anchored at the
// cursor; drag gestures pan only when they start on the background, so a
// drag that starts on a node stays a node drag. ZoomIn/ZoomOut are eased,
// time-boxed steps and Reset snaps back to identity. ToModel inverts the
// transform, which is what lets a dragged node stay under the cursor at any
// pan/zoom.
//
// Pointer is the per-press state machine idle -> pressed -> dragging|click.
// A press pins the node at once; only a cumulative displacement past the
// threshold makes it a drag, and anything less is a click that opens the
// page URL. A short cooldown after a drag release swallows the trailing
// click the host may still deliver.
package view
