package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/madangbooks/madang/internal/domain/sale"
	"github.com/madangbooks/madang/internal/handler"
	"github.com/madangbooks/madang/pkg/health"
	"github.com/madangbooks/madang/pkg/httpmiddleware"
)

// Telemetry provides the OpenTelemetry providers; *app.Telemetry of
// go-faster/sdk satisfies it.
type Telemetry = httpmiddleware.Telemetry

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("driver", cfg.Storage().Driver),
	)

	store, closeStore, err := OpenStore(ctx, lg, cfg.Storage())
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := newServer(ctx, m, cfg, store)
	if err != nil {
		return err
	}
	srv.health.Start(ctx, 10*time.Second)
	srv.health.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		srv.health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := srv.http.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		srv.health.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

type server struct {
	http   *http.Server
	health *health.Health
}

// newServer wires the service, probes and middleware over store. The probes
// are not started.
func newServer(ctx context.Context, m Telemetry, cfg *Config, store Store) (*server, error) {
	opts, err := cfg.SaleOptions()
	if err != nil {
		return nil, err
	}
	sales, err := sale.NewService(store, append(opts,
		sale.WithMeterProvider(m.MeterProvider()),
		sale.WithTracerProvider(m.TracerProvider()),
	)...)
	if err != nil {
		return nil, errors.Wrap(err, "create sale service")
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, health.PingCheck(store))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc-pause", time.Second, health.GCMaxPauseCheck(time.Second))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(handler.HandlerConfig{}, sales).Register(mux)

	return &server{
		health: healthSvc,
		http: &http.Server{
			ReadHeaderTimeout: time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
			Addr:              cfg.Addr,
			Handler: httpmiddleware.Wrap(mux,
				httpmiddleware.InjectLogger(zctx.From(ctx)),
				httpmiddleware.Recovery(),
				httpmiddleware.CORS(httpmiddleware.CORSConfig{
					AllowOrigins:     cfg.CORS.Origins,
					AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
					ExposeHeaders:    []string{"X-Request-ID"},
					AllowCredentials: cfg.CORS.AllowCredentials,
					MaxAge:           86400,
				}),
				httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
					Max:    cfg.RateLimit.Max,
					Window: cfg.RateLimit.Window,
					Skip:   httpmiddleware.ReadOnly,
				}),
				httpmiddleware.RequestID(),
				httpmiddleware.Instrument("madang-api", m),
				httpmiddleware.LogRequests(),
			),
		},
	}, nil
}
