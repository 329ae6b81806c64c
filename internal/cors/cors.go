// Package cors implements the gateway's origin allow-list and the response
// header policies (CORS and static security hardening headers). Matching is
// exact string comparison only: no wildcards, no suffix or prefix matching.
package cors

import (
	"net/http"
	"strings"
)

// Development fallback origins, used only when no origins are configured.
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Policy is an immutable origin allow-list built once per process.
type Policy struct {
	allowed map[string]struct{}
}

// NewPolicy builds a Policy from the configured origin list plus an optional
// site URL. An empty result falls back to the fixed development allow-list.
func NewPolicy(origins []string, siteURL string) *Policy {
	allowed := make(map[string]struct{}, len(origins)+1)
	for _, value := range origins {
		if origin := strings.TrimSpace(value); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	if siteURL = strings.TrimSpace(siteURL); siteURL != "" {
		allowed[siteURL] = struct{}{}
	}
	if len(allowed) == 0 {
		for _, origin := range devOrigins {
			allowed[origin] = struct{}{}
		}
	}
	return &Policy{allowed: allowed}
}

// IsAllowed reports whether origin exactly matches a configured entry.
func (p *Policy) IsAllowed(origin string) bool {
	_, ok := p.allowed[origin]
	return ok
}

// Apply sets the CORS response headers. Allowed methods, allowed headers,
// and the 24h preflight cache are always set; Allow-Origin and
// Allow-Credentials only when the origin passes the allow-list.
func (p *Policy) Apply(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, User-Id")
	h.Set("Access-Control-Max-Age", "86400")
	if p.IsAllowed(origin) {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Vary", "Origin")
	}
}

// SecurityHeaders attaches the static hardening header set. No per-request
// variation: every response carries these regardless of status.
func SecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// WritePreflight answers an OPTIONS request: 204 with CORS and security
// headers and no body. Callers must invoke this before method, origin, or
// quota checks.
func (p *Policy) WritePreflight(w http.ResponseWriter, r *http.Request) {
	SecurityHeaders(w.Header())
	p.Apply(w.Header(), r.Header.Get("Origin"))
	w.WriteHeader(http.StatusNoContent)
}
