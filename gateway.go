// Package voicegate is a request gateway in front of voice and language
// capabilities. Every endpoint runs the same pipeline: CORS preflight,
// method and origin checks, kill-switch gating, fixed-window rate limiting,
// request validation, then a timeout-guarded upstream call with optional
// graceful degradation. Security and lifecycle events are audited through a
// field-allowlisted logger.
package voicegate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/harborplan/voicegate/internal/audit"
	"github.com/harborplan/voicegate/internal/cors"
	"github.com/harborplan/voicegate/internal/guard"
	"github.com/harborplan/voicegate/internal/identity"
	"github.com/harborplan/voicegate/internal/killswitch"
	"github.com/harborplan/voicegate/internal/logging"
	"github.com/harborplan/voicegate/internal/metrics"
	"github.com/harborplan/voicegate/internal/ratelimit"
)

// identityPrefixLen is how many leading characters of the caller identifier
// reach audit records. Enough to correlate, not enough to identify.
const identityPrefixLen = 6

// Gateway owns the shared pipeline state: the origin policy, the kill-switch
// flags, the rate limiter, and the audit logger. It is safe for concurrent
// use; the rate table is the only mutable state and it serialises internally.
type Gateway struct {
	cfg      Config
	policy   *cors.Policy
	switches *killswitch.Flags
	limiter  *ratelimit.Limiter
	auditor  *audit.Logger
}

// New builds a Gateway from a configuration snapshot. The audit sink is
// chosen by cfg.Audit; pass a different one afterwards with SetAuditSink.
func New(cfg Config) (*Gateway, error) {
	cfg = cfg.withDefaults()
	sink, err := newAuditSink(cfg.Audit)
	if err != nil {
		return nil, err
	}
	return &Gateway{
		cfg:      cfg,
		policy:   cors.NewPolicy(cfg.Origins, cfg.SiteURL),
		switches: killswitch.New(cfg.KillSwitches),
		limiter:  ratelimit.New(nil),
		auditor:  audit.NewLogger(sink),
	}, nil
}

func newAuditSink(cfg AuditConfig) (audit.Sink, error) {
	switch cfg.Sink {
	case "", "log":
		return audit.LogSink{}, nil
	case "sqlite":
		return audit.NewSQLiteSink(cfg.DSN)
	case "postgres":
		return audit.NewPostgresSink(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Sink)
	}
}

// SetAuditSink replaces the audit sink. Call before serving traffic.
func (g *Gateway) SetAuditSink(sink audit.Sink) {
	g.auditor = audit.NewLogger(sink)
}

// Limiter exposes the rate limiter for periodic eviction.
func (g *Gateway) Limiter() *ratelimit.Limiter { return g.limiter }

// EvictExpired drops rate-limit records whose window has passed.
func (g *Gateway) EvictExpired() int { return g.limiter.EvictExpired() }

// Handler wires a capability into the shared pipeline. The stage order is
// fixed: preflight, method, origin, kill switch, rate limit, validation,
// guarded execution. Earlier stages never consume quota for later ones; in
// particular a disabled capability rejects before the rate limiter counts.
func (g *Gateway) Handler(cap Capability) http.HandlerFunc {
	quota := g.cfg.Quotas[cap.Class]
	timeout := g.cfg.TimeoutFor(cap.Class)

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		log := logging.FromContext(ctx)
		origin := r.Header.Get("Origin")

		if r.Method == http.MethodOptions {
			g.policy.WritePreflight(w, r)
			return
		}

		cors.SecurityHeaders(w.Header())
		g.policy.Apply(w.Header(), origin)

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST, OPTIONS")
			metrics.RequestsTotal.WithLabelValues(cap.Name, "rejected").Inc()
			writeError(w, http.StatusMethodNotAllowed, "method not allowed",
				"use POST for this endpoint", codeMethodNotAllowed)
			return
		}

		if origin != "" && !g.policy.IsAllowed(origin) {
			metrics.OriginRejections.Inc()
			metrics.RequestsTotal.WithLabelValues(cap.Name, "rejected").Inc()
			log.Warn("origin rejected", "capability", cap.Name)
			writeError(w, http.StatusForbidden, "origin not allowed",
				"this origin may not call the gateway", codeOriginForbidden)
			return
		}

		if !g.switches.Enabled(cap.Class) {
			metrics.KillSwitchTrips.WithLabelValues(cap.Name).Inc()
			metrics.RequestsTotal.WithLabelValues(cap.Name, "rejected").Inc()
			g.auditor.Log(ctx, audit.KillSwitchTriggered, map[string]string{
				audit.FieldTask: cap.Name,
			})
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusServiceUnavailable, "service disabled",
				cap.Name+" is temporarily unavailable", codeServiceDisabled)
			return
		}

		id := identity.FromRequest(r)
		decision := g.limiter.Check(id, cap.Class, quota.MaxRequests, quota.Window())
		setRateLimitHeaders(w.Header(), decision)
		if !decision.Allowed {
			metrics.RateLimitRejections.WithLabelValues(cap.Class).Inc()
			metrics.RequestsTotal.WithLabelValues(cap.Name, "rejected").Inc()
			g.auditor.Log(ctx, audit.RateLimitExceeded, map[string]string{
				audit.FieldTask:   cap.Name,
				audit.FieldAction: identity.Prefix(id, identityPrefixLen),
			})
			w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter(time.Now())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded",
				"too many requests, slow down", codeRateLimited)
			return
		}

		payload, err := cap.Validate(r)
		if err != nil {
			metrics.RequestsTotal.WithLabelValues(cap.Name, "rejected").Inc()
			writeError(w, http.StatusBadRequest, "invalid request", safeMessage(err), codeInvalidRequest)
			return
		}

		g.auditor.Log(ctx, audit.TaskStarted, map[string]string{
			audit.FieldTask: cap.Name,
		})

		result, err := guard.WithTimeout(ctx, timeout, cap.TimeoutMessage,
			func(callCtx context.Context) (*Result, error) {
				return cap.Execute(callCtx, payload)
			})
		if err != nil {
			g.finishFailure(w, r, cap, payload, err, start)
			return
		}

		writeResult(w, result)
		metrics.RequestsTotal.WithLabelValues(cap.Name, "success").Inc()
		metrics.RequestDuration.WithLabelValues(cap.Name).Observe(time.Since(start).Seconds())
		log.Info("request completed",
			"capability", cap.Name,
			"status", "success",
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// finishFailure audits and classifies an execution failure, then either
// degrades through the capability's fallback or answers with a user-safe
// error. Vendor error text never reaches the response body.
func (g *Gateway) finishFailure(w http.ResponseWriter, r *http.Request, cap Capability, payload any, err error, start time.Time) {
	ctx := r.Context()
	log := logging.FromContext(ctx)

	switch {
	case errors.Is(err, ErrNotConfigured):
		metrics.RequestsTotal.WithLabelValues(cap.Name, "rejected").Inc()
		g.auditor.Log(ctx, audit.ErrorOccurred, map[string]string{
			audit.FieldTask:      cap.Name,
			audit.FieldErrorCode: "NOT_CONFIGURED",
		})
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusServiceUnavailable, "service not configured",
			cap.Name+" has no upstream configured", codeNotConfigured)
		return
	case guard.IsTimeout(err):
		metrics.UpstreamTimeouts.WithLabelValues(cap.Name).Inc()
		g.auditor.Log(ctx, audit.TimeoutOccurred, map[string]string{
			audit.FieldTask:      cap.Name,
			audit.FieldErrorCode: "TIMEOUT",
		})
		log.Warn("upstream timeout", "capability", cap.Name, "timeout_ms", g.cfg.Timeouts[cap.Class])
	default:
		metrics.UpstreamErrors.WithLabelValues(cap.Name).Inc()
		g.auditor.Log(ctx, audit.ErrorOccurred, map[string]string{
			audit.FieldTask:      cap.Name,
			audit.FieldErrorCode: errorCode(err),
		})
		log.Error("upstream failure", "capability", cap.Name, "error", err.Error())
	}

	if cap.Fallback != nil {
		if res := cap.Fallback(payload); res != nil {
			writeResult(w, res)
			metrics.RequestsTotal.WithLabelValues(cap.Name, "fallback").Inc()
			metrics.RequestDuration.WithLabelValues(cap.Name).Observe(time.Since(start).Seconds())
			log.Info("request completed",
				"capability", cap.Name,
				"status", "fallback",
				"duration_ms", time.Since(start).Milliseconds())
			return
		}
	}

	metrics.RequestsTotal.WithLabelValues(cap.Name, "error").Inc()
	if guard.IsTimeout(err) {
		writeError(w, http.StatusInternalServerError, "upstream timeout",
			cap.TimeoutMessage, codeUpstreamError)
		return
	}
	writeError(w, http.StatusInternalServerError, "upstream failure",
		cap.Name+" is temporarily unable to answer", codeUpstreamError)
}

// safeMessage extracts a client-facing message from a validation error.
// Anything that is not a ValidationError collapses to a generic message.
func safeMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return "request could not be parsed"
}

// coder is implemented by errors that carry a stable machine code.
type coder interface {
	ErrorCode() string
}

func errorCode(err error) string {
	var c coder
	if errors.As(err, &c) && c.ErrorCode() != "" {
		return c.ErrorCode()
	}
	return "UNKNOWN"
}
