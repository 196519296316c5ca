package opsapi

import (
	"net/http"

	"github.com/dalemusser/stratawell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the ops endpoints.
//
// When mounted at /api/ops:
//   - GET /api/ops/stats
//   - GET /api/ops/errors
//   - GET /api/ops/requests
//   - GET /api/ops/requests/{requestID}
//
// These are not counted in API stats and are never cross-origin.
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Get("/stats", h.StatsHandler)
	r.Get("/errors", h.ErrorsHandler)
	r.Get("/requests", h.ListRequestsHandler)
	r.Get("/requests/{requestID}", h.RequestHandler)

	return r
}
