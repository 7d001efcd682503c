package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/middleware"
)

// router assembles the full HTTP surface: health and metrics endpoints stay
// open, everything under /api/v1 requires a valid JWT.
func (a *App) router() http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = a.cfg.Environment

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(a.logger))
	r.Use(middleware.PrometheusMetrics())

	r.Get("/health/live", a.health.LivenessHandler())
	r.Get("/health/ready", a.health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if a.cfg.Environment == "development" {
		r.Post("/api/v1/auth/token", devTokenHandler(a.jwtManager, a.logger))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(a.jwtManager.MiddlewareValidator()))
		r.Use(middleware.RequestLogger(a.logger))

		r.Route("/cart", a.cartHandler.Routes)
		r.Route("/orders", a.orderHandler.Routes)
		r.Route("/payments", func(r chi.Router) {
			// Payment endpoints sit behind the rate limiter; a stolen token
			// should not let anyone hammer the provider.
			r.Use(middleware.RateLimit(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst, a.logger))
			a.paymentHandler.Routes(r)
		})
		r.Route("/notifications", a.notificationHandler.Routes)
	})

	return r
}
