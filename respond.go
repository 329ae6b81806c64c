package voicegate

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/harborplan/voicegate/internal/ratelimit"
)

// Result is a capability's successful outcome: either a JSON document or a
// raw binary body with its content type.
type Result struct {
	JSON        any
	Binary      []byte
	ContentType string
}

// errorBody is the client-visible error envelope. It never carries stack
// traces, upstream error text, or internal identifiers.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Stable error codes surfaced to clients.
const (
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeOriginForbidden  = "ORIGIN_FORBIDDEN"
	codeServiceDisabled  = "SERVICE_DISABLED"
	codeNotConfigured    = "SERVICE_NOT_CONFIGURED"
	codeRateLimited      = "RATE_LIMITED"
	codeInvalidRequest   = "INVALID_REQUEST"
	codeUpstreamError    = "UPSTREAM_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, label, message, code string) {
	writeJSON(w, status, errorBody{Error: label, Message: message, Code: code})
}

func writeResult(w http.ResponseWriter, res *Result) {
	if res.Binary != nil {
		ct := res.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Binary)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Binary)
		return
	}
	writeJSON(w, http.StatusOK, res.JSON)
}

// setRateLimitHeaders attaches the quota headers every response past the
// rate-limit stage carries.
func setRateLimitHeaders(h http.Header, d ratelimit.Decision) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}
