// Command server runs the bookify backend: the public API on one listener
// and the ops surface (/metrics, /healthz) on another.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bookify/internal/audit"
	"bookify/internal/auth/csrf"
	authhandler "bookify/internal/auth/handler"
	authservice "bookify/internal/auth/service"
	"bookify/internal/auth/session"
	authstore "bookify/internal/auth/store"
	bookinghandler "bookify/internal/booking/handler"
	bookingservice "bookify/internal/booking/service"
	bookingstore "bookify/internal/booking/store"
	cataloghandler "bookify/internal/catalog/handler"
	catalogservice "bookify/internal/catalog/service"
	catalogstore "bookify/internal/catalog/store"
	"bookify/internal/platform/config"
	"bookify/internal/platform/httpserver"
	"bookify/internal/platform/logger"
	"bookify/internal/platform/metrics"
	"bookify/internal/platform/postgres"
	"bookify/internal/platform/redis"
	"bookify/internal/ratelimit"
	ratelimitmw "bookify/internal/ratelimit/middleware"
	tenanthandler "bookify/internal/tenant/handler"
	tenantservice "bookify/internal/tenant/service"
	tenantstore "bookify/internal/tenant/store"
	"bookify/internal/token"
	tokenstore "bookify/internal/token/store"
	transport "bookify/internal/transport/http"
	"bookify/pkg/email"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	db, err := postgres.Open(cfg.Postgres.URL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("postgres connected")
	}

	cache, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		log.Info("redis connected")
	}

	var (
		tenants           tenantservice.TenantStore
		users             authservice.UserStore
		verificationStore token.Store
		resetStore        token.Store
		catalogStore      catalogservice.Store
		bookingStore      bookingservice.Store
	)
	if db != nil {
		tenants = tenantstore.NewPostgres(db)
		users = authstore.NewPostgres(db)
		verificationStore = tokenstore.NewPostgres(db, "verification_tokens")
		resetStore = tokenstore.NewPostgres(db, "password_reset_tokens")
		catalogStore = catalogstore.NewPostgres(db)
		bookingStore = bookingstore.NewPostgres(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
		tenants = tenantstore.NewMemory()
		users = authstore.NewMemory()
		verificationStore = tokenstore.NewMemory()
		resetStore = tokenstore.NewMemory()
		catalogStore = catalogstore.NewMemory()
		bookingStore = bookingstore.NewMemory()
	}

	var sessions session.Store
	if cache != nil {
		sessions = session.NewRedis(cache.Client)
		if db == nil {
			// Tokens can live in Redis too when Postgres is absent.
			verificationStore = tokenstore.NewRedis(cache.Client, "verify")
			resetStore = tokenstore.NewRedis(cache.Client, "reset")
		}
	} else {
		sessions = session.NewMemory()
	}

	var auditor audit.Publisher = audit.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Error("close audit publisher", "error", err)
			}
		}()
		auditor = kafka
		log.Info("audit trail enabled", "topic", cfg.Kafka.Topic)
	}

	tenantSvc := tenantservice.New(tenants, cfg.Domain.RootDomain)
	verification := token.NewLifecycle(token.PurposeVerification, verificationStore)
	reset := token.NewLifecycle(token.PurposeReset, resetStore)
	authSvc := authservice.New(
		users, sessions, verification, reset,
		email.NewLogNotifier(log), auditor, m,
		authservice.Config{
			BcryptCost:      cfg.Auth.BcryptCost,
			SessionTTL:      cfg.Auth.SessionTTL,
			VerificationTTL: cfg.Auth.VerificationTTL,
			ResetTTL:        cfg.Auth.ResetTTL,
		},
	)
	catalogSvc := catalogservice.New(catalogStore)
	bookingSvc := bookingservice.New(bookingStore, catalogSvc, auditor)
	signer := csrf.NewSigner([]byte(cfg.Auth.CSRFSigningKey))

	limiter := ratelimitmw.New(
		ratelimit.NewLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window),
		cfg.RateLimit.GuardedPaths, log, m,
	)
	sweepStop := make(chan struct{})
	defer close(sweepStop)
	limiter.StartSweeper(cfg.RateLimit.SweepInterval, sweepStop)

	router := transport.New(transport.Deps{
		Logger:   log,
		Metrics:  m,
		Resolver: tenantSvc,
		Limiter:  limiter,
		Sessions: authSvc,
		CSRF:     signer,
		Tenants:  tenanthandler.New(tenantSvc, log),
		Auth:     authhandler.New(authSvc, signer, log, cfg.Auth.ExposeTokens),
		Catalog:  cataloghandler.New(catalogSvc, log),
		Bookings: bookinghandler.New(bookingSvc, log),
	})

	opsMux := http.NewServeMux()
	opsMux.Handle("/metrics", promhttp.Handler())
	opsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	apiServer := httpserver.New(cfg.Server.Addr, router)
	opsServer := httpserver.New(cfg.Server.OpsAddr, opsMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api listening", "addr", cfg.Server.Addr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("ops listening", "addr", cfg.Server.OpsAddr)
		if err := opsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := apiServer.Shutdown(shutdownCtx)
		if opsErr := opsServer.Shutdown(shutdownCtx); err == nil {
			err = opsErr
		}
		return err
	})
	return g.Wait()
}
