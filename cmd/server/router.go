package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paddock/internal/lineup/handler"
	"paddock/internal/lineup/service"
	"paddock/internal/platform/config"
	httpmetrics "paddock/internal/platform/metrics"
	"paddock/pkg/platform/httputil"
	"paddock/pkg/platform/middleware/admin"
	"paddock/pkg/platform/middleware/metadata"
	"paddock/pkg/platform/middleware/ratelimit"
	"paddock/pkg/platform/middleware/requesttime"
)

type statusReporter interface {
	Status() service.Status
}

type routerDeps struct {
	handler    *handler.Handler
	status     statusReporter
	adminToken string
	rateLimit  config.RateLimitConfig
	limiter    ratelimit.Limiter
	metrics    *httpmetrics.Metrics
	logger     *slog.Logger
}

func newRouter(d routerDeps) http.Handler {
	limits := ratelimit.New(d.limiter, d.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(d.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ready":  d.status.Status().Ready,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limits.PerClientIP("public", d.rateLimit.PublicPerMinute, time.Minute))
		d.handler.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(d.adminToken, d.logger))
		r.Use(limits.PerClientIP("admin", d.rateLimit.AdminPerMinute, time.Minute))
		d.handler.RegisterAdmin(r)
	})
	return r
}
