// Package http assembles the public HTTP surface: the middleware pipeline
// and every route under /api/v1.
//
// Pipeline order is load-bearing. Admission (rate limiting) runs before
// anything else so abusive clients cost almost nothing; correlation tagging
// and client metadata come next so all later stages log and audit with the
// request id; tenant resolution precedes every handler; recovery and latency
// wrap the handlers themselves.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authhandler "bookify/internal/auth/handler"
	authmw "bookify/internal/auth/middleware"
	bookinghandler "bookify/internal/booking/handler"
	cataloghandler "bookify/internal/catalog/handler"
	"bookify/internal/platform/metrics"
	platformmw "bookify/internal/platform/middleware"
	ratelimitmw "bookify/internal/ratelimit/middleware"
	tenanthandler "bookify/internal/tenant/handler"
	tenantmw "bookify/internal/tenant/middleware"
	shared "bookify/internal/transport/http/shared"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Resolver tenantmw.HostResolver
	Limiter  *ratelimitmw.Middleware

	Sessions authmw.Authenticator
	CSRF     authmw.CSRFVerifier

	Tenants  *tenanthandler.Handler
	Auth     *authhandler.Handler
	Catalog  *cataloghandler.Handler
	Bookings *bookinghandler.Handler
}

// New builds the public router.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(d.Limiter.Handler)
	r.Use(platformmw.CorrelationID)
	r.Use(platformmw.ClientMetadata)
	r.Use(platformmw.RequestTime)
	r.Use(tenantmw.ResolveTenant(d.Resolver))
	r.Use(platformmw.Recovery(d.Logger))
	r.Use(platformmw.Latency(d.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		d.Tenants.Register(api)
		d.Auth.Register(api)
		d.Bookings.RegisterPublic(api)

		api.Group(func(protected chi.Router) {
			protected.Use(authmw.RequireSession(d.Sessions))
			protected.Use(authmw.RequireCSRF(d.CSRF))
			d.Tenants.RegisterAdmin(protected)
			d.Catalog.Register(protected)
			d.Bookings.RegisterAdmin(protected)
		})
	})

	return r
}
