// Package urlnorm canonicalizes URLs for matching.
//
// Page rows, edge rows and UI-constructed URLs arrive from at least three
// independent producers that are not guaranteed to agree on fragment, query,
// trailing slash, case or scheme. Normalize collapses the first three;
// Variants additionally yields case-insensitive and scheme-less forms so a
// lookup map can be keyed by every representation a producer might send.
//
// Normalization is total: a string that fails to parse is returned as-is.
package urlnorm
