// Package analyticsapi serves statistics derived from a user's check-ins.
//
// Endpoints (all POST with a JSON body):
//   - /analytics/summary - Every statistic for a date range
//   - /analytics/correlations - Ranked metric correlations
//   - /analytics/streaks - Current and longest check-in streaks
//   - /analytics/trends - Moving average of one metric
//   - /analytics/cycle - Next period prediction, or null
//   - /analytics/snapshot - Latest precomputed summary, or null
//
// "Today" is the current date in the user's profile time zone. Streaks and
// cycle predictions always read the full history.
package analyticsapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/app/system/inputval"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/stratawell/internal/app/system/ledger"
	"github.com/dalemusser/stratawell/internal/app/system/timeouts"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.uber.org/zap"
)

// Handler handles analytics API requests.
type Handler struct {
	checkins   *checkinstore.Store
	profiles   *profilestore.Store
	snapshots  *snapshotstore.Store
	defaultLoc *time.Location
	window     int
	now        func() time.Time
	logger     *zap.Logger
}

// Options configures a Handler.
type Options struct {
	// DefaultLocation decides "today" for users without a profile. nil means UTC.
	DefaultLocation *time.Location
	// TrendWindow is used when a request omits window. Zero means
	// analytics.DefaultTrendWindow.
	TrendWindow int
}

// NewHandler creates a new analyticsapi handler.
func NewHandler(checkins *checkinstore.Store, profiles *profilestore.Store, snapshots *snapshotstore.Store, opts Options, logger *zap.Logger) *Handler {
	h := &Handler{
		checkins:   checkins,
		profiles:   profiles,
		snapshots:  snapshots,
		defaultLoc: opts.DefaultLocation,
		window:     opts.TrendWindow,
		now:        time.Now,
		logger:     logger,
	}
	if h.defaultLoc == nil {
		h.defaultLoc = time.UTC
	}
	if h.window == 0 {
		h.window = analytics.DefaultTrendWindow
	}
	return h
}

type userInput struct {
	UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
}

type rangeInput struct {
	UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
	Range  string `json:"range" validate:"daterange" label:"Range"`
	Window int    `json:"window"`
}

// SummaryHandler handles POST /analytics/summary.
//
// Request body: {"user_id": "u1", "range": "30d", "window": 7}
//
// Response (200 OK): streaks, correlations, cycle, trends and heatmap.
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	var in rangeInput
	if !decodeValid(w, r, &in) {
		return
	}
	rng, err := analytics.ParseDateRange(in.Range)
	if err != nil {
		h.fail(w, r, "summary", in.UserID, err)
		return
	}

	history, today, err := h.history(r.Context(), in.UserID)
	if err != nil {
		h.fail(w, r, "summary", in.UserID, err)
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseAnalytics)
	summary, err := analytics.Summarize(history, rng, today, h.windowOr(in.Window))
	ledger.EndTiming(r.Context())
	if err != nil {
		h.fail(w, r, "summary", in.UserID, err)
		return
	}
	jsonutil.OK(w, summary)
}

// CorrelationsHandler handles POST /analytics/correlations.
//
// Request body: {"user_id": "u1", "range": "90d"}
//
// Response (200 OK): correlations ordered by strength, strongest first.
// Pairs with fewer than five shared samples are omitted.
func (h *Handler) CorrelationsHandler(w http.ResponseWriter, r *http.Request) {
	var in rangeInput
	if !decodeValid(w, r, &in) {
		return
	}
	checkins, _, err := h.inRange(r.Context(), in.UserID, in.Range)
	if err != nil {
		h.fail(w, r, "correlations", in.UserID, err)
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseAnalytics)
	out, err := analytics.ComputeCorrelations(checkins)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.fail(w, r, "correlations", in.UserID, err)
		return
	}
	jsonutil.OK(w, out)
}

// StreaksHandler handles POST /analytics/streaks.
//
// Request body: {"user_id": "u1"}
//
// Response (200 OK): {"current": 3, "longest": 9, "last_checkin_date": "..."}
func (h *Handler) StreaksHandler(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if !decodeValid(w, r, &in) {
		return
	}
	history, today, err := h.history(r.Context(), in.UserID)
	if err != nil {
		h.fail(w, r, "streaks", in.UserID, err)
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseAnalytics)
	out, err := analytics.CalculateStreaks(history, today)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.fail(w, r, "streaks", in.UserID, err)
		return
	}
	jsonutil.OK(w, out)
}

// TrendsHandler handles POST /analytics/trends.
//
// Request body: {"user_id": "u1", "range": "30d", "metric": "mood", "window": 7}
//
// Response (200 OK): one point per logged value, oldest first, each with the
// trailing average over window points.
func (h *Handler) TrendsHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
		Range  string `json:"range" validate:"daterange" label:"Range"`
		Metric string `json:"metric" validate:"required,metric" label:"Metric"`
		Window int    `json:"window"`
	}
	if !decodeValid(w, r, &in) {
		return
	}
	checkins, _, err := h.inRange(r.Context(), in.UserID, in.Range)
	if err != nil {
		h.fail(w, r, "trends", in.UserID, err)
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseAnalytics)
	out, err := analytics.Trend(checkins, analytics.Metric(in.Metric), h.windowOr(in.Window))
	ledger.EndTiming(r.Context())
	if err != nil {
		h.fail(w, r, "trends", in.UserID, err)
		return
	}
	jsonutil.OK(w, out)
}

// CycleHandler handles POST /analytics/cycle.
//
// Request body: {"user_id": "u1"}
//
// Response (200 OK): the prediction, or null when there are too few
// plausible cycles.
func (h *Handler) CycleHandler(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if !decodeValid(w, r, &in) {
		return
	}
	history, _, err := h.history(r.Context(), in.UserID)
	if err != nil {
		h.fail(w, r, "cycle", in.UserID, err)
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseAnalytics)
	out, err := analytics.PredictCycle(history)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.fail(w, r, "cycle", in.UserID, err)
		return
	}
	jsonutil.OK(w, out)
}

// SnapshotHandler handles POST /analytics/snapshot.
//
// Request body: {"user_id": "u1"}
//
// Response (200 OK): the summary stored by the background snapshot job, or
// null when none has been computed yet.
func (h *Handler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if !decodeValid(w, r, &in) {
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	snap, err := h.snapshots.Get(r.Context(), in.UserID)
	ledger.EndTiming(r.Context())
	if errors.Is(err, snapshotstore.ErrNotFound) {
		jsonutil.OK(w, nil)
		return
	}
	if err != nil {
		h.fail(w, r, "snapshot", in.UserID, err)
		return
	}
	jsonutil.OK(w, snap)
}

func decodeValid(w http.ResponseWriter, r *http.Request, in any) bool {
	if err := jsonutil.Decode(w, r, in); err != nil {
		jsonutil.BadRequest(w, r, "Invalid JSON payload")
		return false
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, r, res.Fields())
		return false
	}
	return true
}

func (h *Handler) windowOr(w int) int {
	if w == 0 {
		return h.window
	}
	return w
}

// today returns the current time in the user's time zone.
func (h *Handler) today(ctx context.Context, userID string) (time.Time, error) {
	loc, err := h.profiles.Location(ctx, userID, h.defaultLoc)
	if err != nil {
		return time.Time{}, err
	}
	return h.now().In(loc), nil
}

// history loads every check-in for the user along with their "today".
func (h *Handler) history(ctx context.Context, userID string) ([]models.CheckIn, time.Time, error) {
	ledger.StartTiming(ctx, ledger.PhaseDB)
	defer ledger.EndTiming(ctx)
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.logger, "load check-in history")
	defer cancel()

	today, err := h.today(ctx, userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	checkins, err := h.checkins.ListAll(ctx, userID)
	return checkins, today, err
}

// inRange loads the user's check-ins inside the named range.
func (h *Handler) inRange(ctx context.Context, userID, rangeName string) ([]models.CheckIn, time.Time, error) {
	rng, err := analytics.ParseDateRange(rangeName)
	if err != nil {
		return nil, time.Time{}, err
	}

	ledger.StartTiming(ctx, ledger.PhaseDB)
	defer ledger.EndTiming(ctx)
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.logger, "load check-ins in range")
	defer cancel()

	today, err := h.today(ctx, userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	since, bounded := rng.Since(today)
	if !bounded {
		checkins, err := h.checkins.ListAll(ctx, userID)
		return checkins, today, err
	}
	checkins, err := h.checkins.List(ctx, userID, since)
	return checkins, today, err
}

// fail writes 400 for invalid input (bad stored dates, window, range or
// metric) and 500 for everything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op, userID string, err error) {
	if analytics.IsInputError(err) {
		h.logger.Debug("analytics rejected input",
			zap.String("op", op),
			zap.String("user_id", userID),
			zap.Error(err))
		jsonutil.BadRequest(w, r, err.Error())
		return
	}
	h.logger.Error("analytics request failed",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.Error(err))
	jsonutil.InternalError(w, r, "Failed to compute analytics")
}
