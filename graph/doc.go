// Package graph builds the render-ready node/link set from the raw page and
// edge rows delivered by the external crawler.
//
// # Model
//
// Pages become Nodes once indexed; Edges become Links once both endpoints
// resolve to visible nodes. Builds are wholesale: every rebuild produces a
// fresh Graph, and continuity comes from copying x/y and velocity forward
// for surviving node ids rather than mutating in place.
//
// # Edge resolution
//
// Edge rows may name endpoints by raw URL or by page id, and the URL a
// producer sends rarely matches the page row byte for byte. The builder
// keys a lookup map by every urlnorm variant of each visible page's URL
// (4-6 keys per page) and tries URL resolution before falling back to the
// explicit id. Edges that still fail to resolve are dropped silently and
// logged at debug level; duplicates collapse to one link per ordered pair;
// self-loops never survive.
//
// A missing edge feed is reported, not papered over: when no edges have
// been synced the link set is empty and EdgesState is EdgesPending. The
// builder never fabricates a placeholder topology, which would mislead the
// user about page relationships while real edges are still loading.
//
// # Visibility
//
// Only rows with indexed status are eligible to render; pending, crawling
// and error rows are skipped entirely. Of the eligible rows, only the first
// PagesIndexed are visible, even when more rows have
// already been fetched; the indexed counter advancing is one of the rebuild
// triggers (the others being a visible-page count change, an edge count
// change, and the first edge sync completing).
package graph
