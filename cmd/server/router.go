package main

import (
	"net/http"

	"contipay-be/internal/checkout"
	"contipay-be/internal/logger"
	"contipay-be/internal/metrics"
	"contipay-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func newRouter(h *checkout.Handler, serviceAuth func(http.Handler) http.Handler, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		logger.RequestIDMiddleware,
		middleware.Recover,
		logger.LoggingMiddleware,
		middleware.HTTPMetrics,
	)
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Service-Token", logger.RequestIDHeader},
			ExposedHeaders: []string{logger.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	h.Routes(r, serviceAuth, middleware.RateLimitMiddleware)
	return r
}
