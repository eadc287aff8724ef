package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bookify/internal/platform/metrics"
	platformmw "bookify/internal/platform/middleware"
	"bookify/internal/ratelimit"
	"bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

// Middleware applies the sliding-window limiter to a guarded set of paths.
// Runs first in the chain so abusive clients are rejected before any business
// logic, matching the pipeline order: admit, tag, bind tenant, handle.
type Middleware struct {
	limiter *ratelimit.Limiter
	guarded map[string]struct{}
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(limiter *ratelimit.Limiter, guardedPaths []string, logger *slog.Logger, m *metrics.Metrics) *Middleware {
	guarded := make(map[string]struct{}, len(guardedPaths))
	for _, p := range guardedPaths {
		guarded[p] = struct{}{}
	}
	return &Middleware{limiter: limiter, guarded: guarded, logger: logger, metrics: m}
}

// Handler wraps next with admission control. Unguarded paths always pass.
// The client key prefers the forwarded address header over the peer address;
// spoofable behind an untrusted proxy, which is a documented tradeoff.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.guarded[r.URL.Path]; !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := platformmw.ClientIPFromRequest(r)
		result := m.limiter.Allow(key, time.Now())
		if !result.Allowed {
			m.metrics.RateLimitDenials.Inc()
			m.logger.WarnContext(r.Context(), "rate limit exceeded",
				"path", r.URL.Path,
				"correlation_id", requestcontext.CorrelationID(r.Context()),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			shared.WriteError(w, r, dErrors.New(dErrors.CodeTooManyRequests, "too many requests, slow down"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StartSweeper evicts stale client keys on a fixed cadence until stop is
// closed. Keeps the key map bounded; the window logs themselves shrink
// lazily on access.
func (m *Middleware) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := m.limiter.Sweep(time.Now()); removed > 0 {
					m.logger.Debug("rate limiter sweep", "removed_keys", removed)
				}
			case <-stop:
				return
			}
		}
	}()
}
