package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carefront.org/internal/audit"
	"carefront.org/internal/auth"
	"carefront.org/internal/config"
	"carefront.org/internal/httpapi"
	"carefront.org/internal/obs"
	"carefront.org/internal/ratelimit"
	"carefront.org/internal/store"
	"carefront.org/internal/store/memory"
	"carefront.org/internal/store/pg"
	"carefront.org/internal/store/sqlite"
	"carefront.org/internal/triage"
)

var version = "0.3.1"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()

	backend, durable, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer backend.Close()

	var introspect *auth.IntrospectionClient
	if cfg.Auth.Introspection != "" {
		introspect = auth.NewIntrospectionClient(cfg.Auth.Introspection)
	}
	verifier := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	}, introspect)

	resolver := auth.NewResolver(auth.ResolverConfig{
		Bindings: auth.ClaimBindings{
			Tenant: cfg.Auth.TenantClaim,
			User:   cfg.Auth.UserClaim,
			Role:   cfg.Auth.RoleClaim,
		},
		HeaderFallback: cfg.Auth.HeaderFallback,
		DemoFallback:   cfg.Auth.DemoFallback,
		Production:     cfg.IsProduction(),
		DemoTenant:     cfg.Auth.DemoTenant,
		DemoUser:       cfg.Auth.DemoUser,
		DemoRole:       cfg.Auth.DemoRole,
	}, verifier)

	limiter := ratelimit.NewLimiter(nil)

	var auditor *audit.Logger
	if durable {
		auditor = audit.NewLogger(backend)
	} else {
		// No durable backend: the audit trail degrades to structured logging.
		auditor = audit.NewLogger(nil)
	}

	var triageClient *triage.Client
	if cfg.Triage.APIKey != "" {
		triageClient = triage.NewClient(cfg.Triage.APIKey, cfg.Triage.Model,
			triage.WithBaseURL(cfg.Triage.BaseURL))
	}
	triageSvc := triage.NewService(triageClient, cfg.Triage.MaxRetries, cfg.Triage.BaseDelay)

	ready := httpapi.ReadyProbe{Backend: backend}
	api := httpapi.New(httpapi.Options{
		Resolver: resolver,
		Limiter:  limiter,
		Audit:    auditor,
		Records:  backend,
		Triage:   triageSvc,
		Ready:    ready,
		Version:  version,
		Limits:   cfg.Limits,
		HTTP:     cfg.HTTP,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go limiter.Janitor(ctx, time.Minute)

	var grpcHealth *httpapi.GRPCHealth
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcHealth = httpapi.NewGRPCHealth(ready)
		go grpcHealth.Watch(ctx, 10*time.Second)
		go func() {
			if err := grpcHealth.Serve(lis); err != nil {
				log.Printf("grpc health: %v", err)
			}
		}()
	}

	log.Printf("Starting %s %s on %s (env=%s)", "carefront-api", version, srv.Addr, cfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	log.Println("Stopped")
}

// openStore selects the backend: Postgres when a DSN is set, SQLite when a
// path is set, in-memory otherwise. The second return reports whether the
// backend is durable enough to carry the audit trail.
func openStore(cfg *config.Config) (store.Store, bool, error) {
	if dsn := cfg.Store.PostgresDSN; dsn != "" {
		s, err := pg.Open(dsn)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	}
	if path := cfg.Store.SQLitePath; path != "" {
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	}
	return memory.New(), false, nil
}
