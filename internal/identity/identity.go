// Package identity derives a stable caller identifier from request headers
// for rate-limit keying and prefix-only audit references.
package identity

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is the fallback identifier when nothing in the request names the caller.
const Unknown = "unknown"

// FromRequest resolves the caller identity in priority order: explicit
// User-Id header, first hop of X-Forwarded-For, then the connection's
// remote address. It never fails; the sentinel "unknown" is the floor.
func FromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("User-Id")); id != "" {
		return id
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return Unknown
}

// Prefix returns a shortened identifier safe for audit records: the first
// n bytes of id, never the whole thing. Identifiers shorter than n are
// returned as-is.
func Prefix(id string, n int) string {
	if n <= 0 || len(id) <= n {
		return id
	}
	return id[:n]
}
