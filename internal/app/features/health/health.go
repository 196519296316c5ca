// Package health provides liveness, readiness and full health endpoints.
package health

import (
	"context"
	"net/http"
	"time"

	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/stratawell/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler provides health check endpoints.
type Handler struct {
	mongoClient *mongo.Client
	snapshots   *snapshotstore.Store
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler. snapshots may be nil, in
// which case the full check omits the snapshot job's last run.
func NewHandler(mongoClient *mongo.Client, snapshots *snapshotstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		snapshots:   snapshots,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status       string            `json:"status"`
	Services     map[string]string `json:"services,omitempty"`
	LastSnapshot *time.Time        `json:"last_snapshot,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the Kubernetes probe paths directly on the root router:
//   - /ready and /readyz - readiness probe
//   - /livez - liveness probe
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check pings MongoDB and reports when insight snapshots were last computed.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		resp.Status = "degraded"
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		resp.Services["mongodb"] = "ok"
	}

	if h.snapshots != nil && resp.Status == "ok" {
		last, err := h.snapshots.LastComputedAt(ctx)
		if err != nil {
			h.logger.Warn("health check: snapshot lookup failed", zap.Error(err))
		} else if !last.IsZero() {
			resp.LastSnapshot = &last
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, status, resp)
}

// Ready checks if the service is ready to accept requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	jsonutil.OK(w, map[string]string{"status": "ready"})
}

// Live checks if the process is alive.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]string{"status": "alive"})
}
