package urlnorm

import (
	"net/url"
	"strings"
)

// Normalize returns a canonical form of raw for equality comparisons: the
// fragment and query string are stripped and a trailing slash is removed
// unless the path is exactly "/". On a parse failure the input is returned
// unchanged; normalization never fails.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	}

	return u.String()
}

// HostPath returns the scheme-less "host/path" form of raw, normalized the
// same way as Normalize. Edge rows and page rows come from independent
// producers that do not always agree on scheme, so matching falls back to
// this form.
func HostPath(raw string) string {
	u, err := url.Parse(Normalize(raw))
	if err != nil {
		return raw
	}
	if u.Host == "" {
		// Relative input; the trimmed path is the best we can do.
		return strings.TrimPrefix(u.Path, "/")
	}
	// Normalize keeps a bare root slash, but without a scheme the slash
	// carries no information; dropping it lets "https://x.com/" and
	// "https://x.com" meet on the same key.
	if u.Path == "/" {
		return u.Host
	}
	return u.Host + u.Path
}

// Variants returns the matching forms tried when resolving an edge endpoint
// against a page: normalized, lowercased normalized, host+path, and
// lowercased host+path. Producers disagree on case and scheme; four keys per
// URL tolerate all observed combinations.
func Variants(raw string) []string {
	norm := Normalize(raw)
	hp := HostPath(raw)
	return []string{
		norm,
		strings.ToLower(norm),
		hp,
		strings.ToLower(hp),
	}
}
