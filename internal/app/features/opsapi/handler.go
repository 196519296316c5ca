// Package opsapi exposes the request ledger and endpoint statistics as JSON
// for operators.
//
// Endpoints (all GET):
//   - /ops/stats?hours=24 - Per-endpoint totals and ledger status counts
//   - /ops/errors?limit=20 - Newest failed requests
//   - /ops/requests?page=1&path=/api/checkins&min_status=400&error_class=validation
//   - /ops/requests/{requestID} - One ledger entry
package opsapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/stratawell/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultStatsHours = 24
	maxStatsHours     = 24 * 90
	defaultErrorLimit = 20
	requestsPageSize  = 50
)

// Handler handles ops API requests.
type Handler struct {
	ledger   *ledgerstore.Store
	apiStats *apistatsstore.Store
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates a new opsapi handler.
func NewHandler(ledger *ledgerstore.Store, apiStats *apistatsstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		ledger:   ledger,
		apiStats: apiStats,
		now:      time.Now,
		logger:   logger,
	}
}

// EndpointStats is one endpoint's totals with its error rate.
type EndpointStats struct {
	apistatsstore.Summary
	ErrorRate float64 `json:"error_rate"`
}

// StatsResponse is the body of GET /ops/stats.
type StatsResponse struct {
	Start         time.Time        `json:"start"`
	End           time.Time        `json:"end"`
	Endpoints     []EndpointStats  `json:"endpoints"`
	StatusCounts  map[string]int64 `json:"status_counts"`
	AvgResponseMs float64          `json:"avg_response_ms"`
}

// StatsHandler handles GET /ops/stats.
//
// hours (default 24, at most 2160) sets how far back the window reaches.
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	hours, ok := intParam(w, r, "hours", defaultStatsHours, 1, maxStatsHours)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "ops stats")
	defer cancel()

	end := h.now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	summaries, err := h.apiStats.GetSummary(ctx, start, end)
	if err != nil {
		h.fail(w, r, "failed to load endpoint stats", err)
		return
	}
	counts, err := h.ledger.CountByStatus(ctx, start, end)
	if err != nil {
		h.fail(w, r, "failed to count ledger entries", err)
		return
	}
	avg, err := h.ledger.AverageResponseTime(ctx, start, end)
	if err != nil {
		h.fail(w, r, "failed to average response time", err)
		return
	}

	resp := StatsResponse{
		Start:         start,
		End:           end,
		Endpoints:     make([]EndpointStats, len(summaries)),
		StatusCounts:  counts,
		AvgResponseMs: avg,
	}
	for i, s := range summaries {
		resp.Endpoints[i] = EndpointStats{Summary: s, ErrorRate: s.ErrorRate()}
	}
	jsonutil.OK(w, resp)
}

// ErrorsHandler handles GET /ops/errors.
//
// limit defaults to 20 and is capped at 100.
func (h *Handler) ErrorsHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", defaultErrorLimit, 1, 100)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "ops errors")
	defer cancel()

	entries, err := h.ledger.RecentErrors(ctx, limit)
	if err != nil {
		h.fail(w, r, "failed to load recent errors", err)
		return
	}
	jsonutil.OK(w, entries)
}

// ListRequestsHandler handles GET /ops/requests.
//
// Filters: path (prefix), min_status, error_class, since (RFC 3339). Pages
// hold 50 entries, newest first.
func (h *Handler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	page, ok := intParam(w, r, "page", 1, 1, 1<<20)
	if !ok {
		return
	}
	minStatus, ok := intParam(w, r, "min_status", 0, 0, 599)
	if !ok {
		return
	}
	filter := ledgerstore.ListFilter{
		PathPrefix: query.Get(r, "path"),
		MinStatus:  minStatus,
		ErrorClass: query.Get(r, "error_class"),
	}
	if since := query.Get(r, "since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			jsonutil.BadRequest(w, r, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = t
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "ops list requests")
	defer cancel()

	result, err := h.ledger.List(ctx, filter, page, requestsPageSize)
	if err != nil {
		h.fail(w, r, "failed to list ledger entries", err)
		return
	}
	jsonutil.OK(w, result)
}

// RequestHandler handles GET /ops/requests/{requestID}.
func (h *Handler) RequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "ops get request")
	defer cancel()

	entry, err := h.ledger.GetByRequestID(ctx, requestID)
	if errors.Is(err, ledgerstore.ErrNotFound) {
		jsonutil.NotFound(w, r, "No ledger entry for that request ID")
		return
	}
	if err != nil {
		h.fail(w, r, "failed to load ledger entry", err)
		return
	}
	jsonutil.OK(w, entry)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	jsonutil.InternalError(w, r, "Failed to load operational data")
}

// intParam reads an integer query parameter, writing 400 when it is not a
// number or falls outside [lo, hi].
func intParam(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := query.Get(r, name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		jsonutil.BadRequest(w, r, name+" must be a whole number from "+strconv.Itoa(lo)+" to "+strconv.Itoa(hi))
		return 0, false
	}
	return v, true
}
