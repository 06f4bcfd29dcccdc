package api

import (
	"context"
	"customer-manager/internal/api/handler"
	mw "customer-manager/internal/api/middleware"
	"customer-manager/internal/config"
	"customer-manager/internal/domain/customer"
	"log/slog"
	"net/http"
	"time"

	_ "customer-manager/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// customerMounts lists every prefix the customer routes answer on. The /api
// prefix keeps older front-ends working.
var customerMounts = []string{"/customers", "/api/customers"}

// SetupRouter wires middleware and routes. ctx bounds background work owned by
// the middleware chain, such as the rate limiter sweep.
func SetupRouter(ctx context.Context, customerService customer.CustomerService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", handler.Health)
	setupAuthRoutes(router, cfg, logger)
	setupCustomerRoutes(router, cfg, customerService, logger)
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(corsOptions(cfg.Server.CORSOrigin)))
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(ctx, cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func corsOptions(origin string) cors.Options {
	if origin == "" {
		origin = "*"
	}
	return cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupCustomerRoutes(router *chi.Mux, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	for _, prefix := range customerMounts {
		logger.Info("Mounting customer routes", "prefix", prefix)
		router.Route(prefix, func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Route("/{customerID}", func(r chi.Router) {
				r.Get("/", h.GetCustomer)
				r.Put("/", h.UpdateCustomer)
				r.Delete("/", h.DeleteCustomer)
			})
		})
	}
}
