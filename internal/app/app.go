package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/misagal/retail-pos/internal/catalog"
	"github.com/misagal/retail-pos/internal/checkout"
	"github.com/misagal/retail-pos/internal/handler"
	"github.com/misagal/retail-pos/internal/kvstore"
	"github.com/misagal/retail-pos/internal/pos"
	"github.com/misagal/retail-pos/pkg/health"
	"github.com/misagal/retail-pos/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Store.Backend),
	)

	// Blob store backend.
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return errors.Wrap(err, "open blob store")
	}
	defer func() { _ = store.Close() }()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, store.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Catalog, sales session, checkout.
	catalogStore := catalog.NewStore(store, cfg.Store.Key, bootstrapSource(cfg.Bootstrap))
	admin := catalog.NewAdmin(catalogStore)
	terminal := pos.NewTerminal(catalogStore, checkout.NewReconciler(catalogStore))

	// Routes: health endpoints + API on one server.
	h := handler.NewHandler(terminal, admin)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       cfg.CORS.MaxAge,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openStore builds the configured blob store backend.
func openStore(ctx context.Context, cfg StoreConfig) (kvstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return kvstore.NewMemory(), nil
	case "bolt":
		return kvstore.OpenBolt(cfg.Path)
	case "postgres":
		pool, err := kvstore.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := kvstore.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return kvstore.NewPostgres(pool), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// bootstrapSource picks the seed dataset for an empty catalog: a local file,
// a URL, or the embedded default.
func bootstrapSource(cfg BootstrapConfig) catalog.Source {
	switch {
	case cfg.File != "":
		return catalog.FileSource{Path: cfg.File}
	case cfg.URL != "":
		return catalog.HTTPSource{URL: cfg.URL}
	default:
		return catalog.EmbeddedSource{}
	}
}
