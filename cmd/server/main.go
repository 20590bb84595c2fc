package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"aegis/internal/directory/handler"
	dirmetrics "aegis/internal/directory/metrics"
	"aegis/internal/directory/seed"
	"aegis/internal/directory/service"
	legalentityStore "aegis/internal/directory/store/legalentity"
	privilegeStore "aegis/internal/directory/store/privilege"
	roleStore "aegis/internal/directory/store/role"
	tokenregStore "aegis/internal/directory/store/tokenreg"
	userStore "aegis/internal/directory/store/user"
	"aegis/internal/directory/workers/cleanup"
	"aegis/internal/platform/config"
	"aegis/internal/platform/health"
	"aegis/internal/platform/logger"
	"aegis/internal/token"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing aegis directory",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	users := userStore.New()
	roles := roleStore.New()
	privileges := privilegeStore.New()
	entities := legalentityStore.New()
	registry := tokenregStore.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tenantID, err := seed.New(users, roles, privileges, entities, log).SeedAll(ctx)
	if err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("demo tenant ready", "tenant_id", tenantID)

	metrics := dirmetrics.New()
	svc := service.New(
		users, roles, privileges, entities, registry,
		token.NewService(cfg.JWTSigningKey, cfg.TokenTTL),
		service.WithLogger(log),
		service.WithMetrics(metrics),
		service.WithLatency(cfg.DirectoryLatency),
	)

	reaper, err := cleanup.New(registry,
		cleanup.WithCleanupInterval(cfg.CleanupInterval),
		cleanup.WithCleanupLogger(log),
		cleanup.WithCleanupMetrics(metrics),
	)
	if err != nil {
		log.Error("cleanup worker init failed", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	handler.New(svc, log).Register(router)
	health.New(cfg.Environment).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := reaper.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
