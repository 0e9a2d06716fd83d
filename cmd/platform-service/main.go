// cmd/platform-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"canopy/internal/platform"
	"canopy/pkg/config"
	"canopy/pkg/db"
	"canopy/pkg/edge"
	"canopy/pkg/logger"
	"canopy/pkg/metrics"
	"canopy/pkg/middleware"
	"canopy/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	var store tenants.Store
	if pool != nil {
		store = tenants.NewPostgresStore(pool, log)
		if err := tenants.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		if err := tenants.SeedFromEnv(context.Background(), pool, os.Getenv("TENANT_SEED_JSON")); err != nil {
			log.Warnw("seed", "err", err)
		}
		if cfg.TenantSeedFile != "" {
			if err := tenants.SeedFromFile(context.Background(), pool, cfg.TenantSeedFile); err != nil {
				log.Warnw("seed file", "path", cfg.TenantSeedFile, "err", err)
			}
		}
	} else {
		store = tenants.NewMemoryStoreFromEnv(log)
	}

	// The edge resolver consumes the directory either in-process or via the
	// internal HTTP lookup endpoint, optionally behind a bounded-TTL cache.
	var dir tenants.Directory = store
	if cfg.DirectoryURL != "" {
		dir = tenants.NewHTTPDirectory(cfg.DirectoryURL, cfg.DirectoryTimeout, log)
	}
	if cfg.ResolveCacheTTL > 0 {
		dir = tenants.NewCachedDirectory(dir, rdb, cfg.ResolveCacheTTL)
	}

	metrics.Init()

	rv := &edge.Resolver{
		BaseDomain:    cfg.BaseDomain,
		LocalMarker:   cfg.LocalMarker,
		Directory:     dir,
		LookupTimeout: cfg.DirectoryTimeout,
		Log:           log,
	}

	app := platform.New(log, store, platform.Config{
		Env:         cfg.Env,
		BaseDomain:  cfg.BaseDomain,
		LocalMarker: cfg.LocalMarker,
		JWTSecret:   []byte(cfg.JWTSecret),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.DebugWriteHeader())
	r.Use(middleware.Tracing(cfg))
	r.Use(middleware.Rewrite(rv, log))
	r.Mount("/", app.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("platform-service listening", "addr", cfg.HTTPAddr, "base_domain", cfg.BaseDomain)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("platform-service stopped")
}
