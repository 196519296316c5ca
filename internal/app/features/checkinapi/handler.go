// Package checkinapi provides the daily check-in API endpoints.
//
// Endpoints (all POST with a JSON body unless noted):
//   - /checkins/save - Save the check-in for a user and date (upsert)
//   - /checkins/load - Load one day's check-in, or null
//   - /checkins/list - Check-ins inside a date range, oldest first
//   - /checkins/recent - The newest check-ins, newest first
//   - /checkins/delete - Delete one day's check-in
//   - GET /checkins/export.csv - Download check-ins as CSV
//
// Check-ins are stored in the checkins collection, one per user per date.
package checkinapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	"github.com/dalemusser/stratawell/internal/app/system/inputval"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/stratawell/internal/app/system/ledger"
	"github.com/dalemusser/stratawell/internal/app/system/textclean"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.uber.org/zap"
)

// Handler handles check-in API requests.
type Handler struct {
	checkins   *checkinstore.Store
	profiles   *profilestore.Store
	defaultLoc *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// NewHandler creates a new checkinapi handler. defaultLoc decides "today"
// for users without a saved profile; nil means UTC.
func NewHandler(checkins *checkinstore.Store, profiles *profilestore.Store, defaultLoc *time.Location, logger *zap.Logger) *Handler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Handler{
		checkins:   checkins,
		profiles:   profiles,
		defaultLoc: defaultLoc,
		now:        time.Now,
		logger:     logger,
	}
}

// dayInput identifies one user's check-in for one date.
type dayInput struct {
	UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
	Date   string `json:"date" validate:"required,isodate" label:"Date"`
}

type rangeInput struct {
	UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
	Range  string `json:"range" validate:"daterange" label:"Range"`
}

// SaveHandler handles POST /checkins/save.
//
// The body is a full check-in. user_id and date are required; every other
// field is optional and replaces what was stored for that day. Dependent
// fields are cleared when their flag is off (no flow_level without period).
//
// Response (200 OK): the stored check-in.
func (h *Handler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	var in models.CheckIn
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, r, "Invalid JSON payload")
		return
	}
	textclean.CheckIn(&in)

	res := inputval.Validate(dayInput{UserID: in.UserID, Date: in.Date})
	res.Merge(inputval.CheckIn(in))
	if res.HasErrors() {
		jsonutil.ValidationError(w, r, res.Fields())
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	saved, err := h.checkins.Upsert(r.Context(), in)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.logger.Error("failed to save check-in",
			zap.String("user_id", in.UserID),
			zap.String("date", in.Date),
			zap.Error(err))
		jsonutil.InternalError(w, r, "Failed to save check-in")
		return
	}

	ledger.AddMetadata(r.Context(), "date", in.Date)
	h.logger.Debug("check-in saved",
		zap.String("user_id", in.UserID),
		zap.String("date", in.Date))
	jsonutil.OK(w, saved)
}

// LoadHandler handles POST /checkins/load.
//
// Request body: {"user_id": "u1", "date": "2024-03-10"}
//
// Response (200 OK): the check-in, or null when none was saved that day.
func (h *Handler) LoadHandler(w http.ResponseWriter, r *http.Request) {
	var in dayInput
	if !h.decodeValid(w, r, &in) {
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	c, err := h.checkins.GetByDate(r.Context(), in.UserID, in.Date)
	ledger.EndTiming(r.Context())
	if errors.Is(err, checkinstore.ErrNotFound) {
		jsonutil.OK(w, nil)
		return
	}
	if err != nil {
		h.logger.Error("failed to load check-in",
			zap.String("user_id", in.UserID),
			zap.String("date", in.Date),
			zap.Error(err))
		jsonutil.InternalError(w, r, "Failed to load check-in")
		return
	}
	jsonutil.OK(w, c)
}

// ListHandler handles POST /checkins/list.
//
// Request body: {"user_id": "u1", "range": "30d"}
//
// range is one of 7d, 30d (default), 90d, 1y or all, ending today in the
// user's time zone. Response (200 OK): check-ins ordered by date ascending.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var in rangeInput
	if !h.decodeValid(w, r, &in) {
		return
	}

	out, err := h.inRange(r.Context(), in.UserID, in.Range)
	if err != nil {
		h.writeStoreError(w, r, "list", in.UserID, err)
		return
	}
	jsonutil.OK(w, out)
}

// RecentHandler handles POST /checkins/recent.
//
// Request body: {"user_id": "u1", "limit": 7}
//
// limit defaults to 7 and is capped at 100. Response (200 OK): check-ins
// ordered by date descending.
func (h *Handler) RecentHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
		Limit  int64  `json:"limit"`
	}
	if !h.decodeValid(w, r, &in) {
		return
	}
	if in.Limit < 0 {
		jsonutil.ValidationError(w, r, map[string]string{"limit": "limit must not be negative."})
		return
	}
	if in.Limit > models.MaxRecentLimit {
		in.Limit = models.MaxRecentLimit
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	out, err := h.checkins.Recent(r.Context(), in.UserID, in.Limit)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.writeStoreError(w, r, "recent", in.UserID, err)
		return
	}
	jsonutil.OK(w, out)
}

// DeleteHandler handles POST /checkins/delete.
//
// Request body: {"user_id": "u1", "date": "2024-03-10"}
//
// Response (200 OK): {"deleted": true} or {"deleted": false} when there was
// nothing to delete.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	var in dayInput
	if !h.decodeValid(w, r, &in) {
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	deleted, err := h.checkins.Delete(r.Context(), in.UserID, in.Date)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.logger.Error("failed to delete check-in",
			zap.String("user_id", in.UserID),
			zap.String("date", in.Date),
			zap.Error(err))
		jsonutil.InternalError(w, r, "Failed to delete check-in")
		return
	}
	if deleted {
		h.logger.Info("check-in deleted",
			zap.String("user_id", in.UserID),
			zap.String("date", in.Date))
	}
	jsonutil.OK(w, map[string]bool{"deleted": deleted})
}

// decodeValid decodes the body into in and validates its tags, writing the
// error response itself when either fails.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, in any) bool {
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

// inRange loads the user's check-ins within the named range.
func (h *Handler) inRange(ctx context.Context, userID, rangeName string) ([]models.CheckIn, error) {
	rng, err := analytics.ParseDateRange(rangeName)
	if err != nil {
		return nil, err
	}

	ledger.StartTiming(ctx, ledger.PhaseDB)
	defer ledger.EndTiming(ctx)

	loc, err := h.profiles.Location(ctx, userID, h.defaultLoc)
	if err != nil {
		return nil, err
	}
	since, bounded := rng.Since(h.now().In(loc))
	if !bounded {
		return h.checkins.ListAll(ctx, userID)
	}
	return h.checkins.List(ctx, userID, since)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, op, userID string, err error) {
	if analytics.IsInputError(err) {
		jsonutil.BadRequest(w, r, err.Error())
		return
	}
	h.logger.Error("check-in query failed",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.Error(err))
	jsonutil.InternalError(w, r, "Failed to load check-ins")
}
