package main

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/owwn/internal/auth"
	"github.com/mmynk/owwn/internal/config"
	"github.com/mmynk/owwn/internal/metrics"
	"github.com/mmynk/owwn/internal/middleware"
	"github.com/mmynk/owwn/internal/service"
	"github.com/mmynk/owwn/pkg/api/apiconnect"
)

type services struct {
	auth   *service.AuthService
	groups *service.GroupService
	ledger *service.LedgerService
}

// newRouter mounts the Connect services plus health and metrics endpoints.
// AuthService accepts anonymous calls; every other service requires a token.
func newRouter(cfg *config.Config, svc *services, jwtManager *auth.JWTManager, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.App.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			"Connect-Protocol-Version", "Connect-Timeout-Ms",
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         7200,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	logging := middleware.LoggingInterceptor(logger)
	public := connect.WithInterceptors(m.Interceptor(), middleware.OptionalAuth(jwtManager), logging)
	private := connect.WithInterceptors(m.Interceptor(), middleware.RequireAuth(jwtManager), logging)

	r.Mount(apiconnect.NewAuthServiceHandler(svc.auth, public))
	r.Mount(apiconnect.NewGroupServiceHandler(svc.groups, private))
	r.Mount(apiconnect.NewLedgerServiceHandler(svc.ledger, private))

	return r
}
