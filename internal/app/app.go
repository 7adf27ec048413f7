package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/vitrine-shop/vitrine/internal/auth"
	"github.com/vitrine-shop/vitrine/internal/browse"
	"github.com/vitrine-shop/vitrine/internal/domain/cart"
	"github.com/vitrine-shop/vitrine/internal/domain/catalog"
	"github.com/vitrine-shop/vitrine/internal/event"
	"github.com/vitrine-shop/vitrine/internal/handler"
	"github.com/vitrine-shop/vitrine/internal/i18n"
	"github.com/vitrine-shop/vitrine/internal/settings"
	"github.com/vitrine-shop/vitrine/internal/source"
	"github.com/vitrine-shop/vitrine/internal/storage/kv"
	"github.com/vitrine-shop/vitrine/pkg/health"
	"github.com/vitrine-shop/vitrine/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Local state store, the durable side of the storefront.
	store, err := kv.Open(cfg.StorePath)
	if err != nil {
		return errors.Wrap(err, "open state store")
	}
	defer func() { _ = store.Close() }()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, store.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	bus := event.New()

	// Cart and preferences hydrate from whatever the store holds; a fresh or
	// unreadable store just means defaults.
	cartSvc := cart.NewService(kv.NewCartRepository(store, lg), bus, lg)
	cartSvc.Hydrate(ctx)

	settingsSvc := settings.NewService(store, bus, lg)
	settingsSvc.Hydrate(ctx)

	// Catalog pipeline: remote client behind an instrumented transport, then
	// the display controller with a locale-aware sort engine.
	src := source.NewClient(source.Config{
		BaseURL:  cfg.CatalogURL,
		Timeout:  cfg.Timeout,
		CacheTTL: cfg.Browse.CacheTTL,
	}, otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	))

	browseCtl := browse.NewController(browse.Config{
		PageSize:       cfg.Browse.PageSize,
		SearchDebounce: cfg.Browse.SearchDebounce,
	}, src, catalog.NewEngine(i18n.Tag(settingsSvc.Language())), bus, lg)
	defer browseCtl.Close()

	authSvc := auth.NewService(bus)

	// HTTP routes.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(cartSvc, browseCtl, src, authSvc, settingsSvc, bus).Routes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Warm the first catalog page in the background; the server is useful
	// even while the source is slow or down.
	go func() {
		if err := browseCtl.Load(ctx); err != nil {
			lg.Warn("initial catalog load failed", zap.Error(err))
		}
	}()

	healthSvc.SetReady(true)

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
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
