// Package profileapi provides the profile save/load API endpoints.
//
// Endpoints:
//   - POST /profile/save - Save a user's preferences (upsert)
//   - POST /profile/load - Load a user's preferences, or the defaults
//   - POST /profile/delete - Erase the profile and every check-in for a user
//   - GET /profile/timezones - Curated time zones grouped by region
//
// One profile per user. The time zone decides which calendar day counts as
// "today" for streaks and date ranges.
package profileapi

import (
	"fmt"
	"net/http"

	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	"github.com/dalemusser/stratawell/internal/app/store/userdata"
	"github.com/dalemusser/stratawell/internal/app/system/inputval"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/stratawell/internal/app/system/ledger"
	"github.com/dalemusser/stratawell/internal/app/system/textclean"
	"github.com/dalemusser/stratawell/internal/app/system/timezones"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.uber.org/zap"
)

// Handler handles profile API requests.
type Handler struct {
	profiles *profilestore.Store
	eraser   *userdata.Eraser
	logger   *zap.Logger
}

// NewHandler creates a new profileapi handler.
func NewHandler(profiles *profilestore.Store, eraser *userdata.Eraser, logger *zap.Logger) *Handler {
	return &Handler{
		profiles: profiles,
		eraser:   eraser,
		logger:   logger,
	}
}

type profileInput struct {
	UserID       string `json:"user_id" validate:"required,max=128" label:"User ID"`
	DisplayName  string `json:"display_name" validate:"max=100" label:"Display name"`
	ReminderTime string `json:"reminder_time" validate:"clock" label:"Reminder time"`
}

// SaveHandler handles POST /profile/save.
//
// Request body:
//
//	{
//	    "user_id": "u1",
//	    "display_name": "Sam",
//	    "reminder_time": "21:30",
//	    "timezone": "Europe/London",
//	    "tracked_features": ["mood", "sleep", "period"]
//	}
//
// Every field except user_id is optional. An empty timezone saves UTC and a
// null reminder_time turns reminders off. Repeated features are dropped.
//
// Response (200 OK): the stored profile.
func (h *Handler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	var in models.Profile
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, r, "Invalid JSON payload")
		return
	}
	textclean.Profile(&in)

	res := inputval.Validate(profileInput{
		UserID:       in.UserID,
		DisplayName:  deref(in.DisplayName),
		ReminderTime: deref(in.ReminderTime),
	})
	if in.Timezone != "" && !inputval.IsValidTimezone(in.Timezone) {
		res.Add("timezone", "Time zone is not a recognized IANA zone.")
	}
	for _, f := range in.TrackedFeatures {
		if !models.IsValidFeature(f) {
			res.Add("tracked_features", fmt.Sprintf("Tracked features contains unknown feature %q.", f))
			break
		}
	}
	if res.HasErrors() {
		jsonutil.ValidationError(w, r, res.Fields())
		return
	}
	in.TrackedFeatures = dedupe(in.TrackedFeatures)

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	saved, err := h.profiles.Upsert(r.Context(), in)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.logger.Error("failed to save profile",
			zap.String("user_id", in.UserID),
			zap.Error(err))
		jsonutil.InternalError(w, r, "Failed to save profile")
		return
	}

	h.logger.Debug("profile saved",
		zap.String("user_id", saved.UserID),
		zap.String("timezone", saved.Timezone))
	jsonutil.OK(w, saved)
}

// LoadHandler handles POST /profile/load.
//
// Request body: {"user_id": "u1"}
//
// Response (200 OK): the saved profile, or the defaults (UTC, every feature
// tracked, no reminder) when the user has never saved one.
func (h *Handler) LoadHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
	}
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, r, "Invalid JSON payload")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, r, res.Fields())
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	p, err := h.profiles.GetOrDefault(r.Context(), in.UserID)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.logger.Error("failed to load profile",
			zap.String("user_id", in.UserID),
			zap.Error(err))
		jsonutil.InternalError(w, r, "Failed to load profile")
		return
	}
	jsonutil.OK(w, p)
}

// DeleteHandler handles POST /profile/delete.
//
// Request body: {"user_id": "u1"}
//
// Response (200 OK):
//
//	{"checkins_deleted": 42, "profile_deleted": true, "snapshot_deleted": true}
//
// Erasing a user with nothing stored still returns 200 with zero counts.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
	}
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, r, "Invalid JSON payload")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, r, res.Fields())
		return
	}

	ledger.StartTiming(r.Context(), ledger.PhaseDB)
	res, err := h.eraser.Erase(r.Context(), in.UserID)
	ledger.EndTiming(r.Context())
	if err != nil {
		h.logger.Error("failed to erase user data",
			zap.String("user_id", in.UserID),
			zap.Error(err))
		jsonutil.InternalError(w, r, "Failed to erase user data")
		return
	}
	jsonutil.OK(w, res)
}

// TimezonesHandler handles GET /profile/timezones.
func (h *Handler) TimezonesHandler(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, timezones.Groups())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dedupe(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
