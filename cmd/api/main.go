package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ironlog.app/internal/auth"
	"ironlog.app/internal/config"
	"ironlog.app/internal/gym"
	"ironlog.app/internal/httpapi"
	"ironlog.app/internal/obs"
	"ironlog.app/internal/store/memory"
	"ironlog.app/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	issuer, err := auth.NewIssuer(cfg.AuthSecret,
		auth.WithTTL(cfg.TokenTTL),
		auth.WithIssuerName(cfg.TokenIssuer),
	)
	if err != nil {
		log.Fatalf("issuer: %v", err)
	}

	// Store selection: PostgreSQL when a DSN is configured, in-memory
	// otherwise (dev and tests).
	var (
		authStore auth.Store
		gymStore  gym.Store
		probe     httpapi.ReadyProbe
		closeFn   func() error
	)
	if cfg.PGDSN != "" {
		pgStore, err := pg.Open(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		authStore = pgStore
		gymStore = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
		closeFn = pgStore.Close
	} else {
		mem := memory.New()
		authStore = mem
		gymStore = mem
		closeFn = func() error { return nil }
		log.Printf("no IRONLOG_PG_DSN set, using in-memory store")
	}

	authSvc, err := auth.NewService(authStore, issuer)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	gymSvc, err := gym.NewService(gymStore)
	if err != nil {
		log.Fatalf("gym service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.EnsureBuiltins(ctx); err != nil {
		cancel()
		log.Fatalf("ensure roles: %v", err)
	}
	cancel()

	api := httpapi.New(authSvc, gymSvc, probe, httpapi.Options{
		Version:      version,
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateBurst:    cfg.RateBurst,
		RatePerSec:   cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	log.Printf("starting ironlog-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("shutting down...")
	obs.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = closeFn()
	log.Println("stopped")
}
