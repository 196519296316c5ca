package checkinapi

import (
	"net/http"

	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/apicors"
	"github.com/dalemusser/stratawell/internal/app/system/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the check-in endpoints.
//
// When mounted at /api/checkins:
//   - POST /api/checkins/save
//   - POST /api/checkins/load
//   - POST /api/checkins/list
//   - POST /api/checkins/recent
//   - POST /api/checkins/delete
//   - GET  /api/checkins/export.csv
//
// Authentication is via API key (Bearer token in Authorization header).
func Routes(h *Handler, recorder *apistats.Recorder, apiKey string, origins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.New(origins))
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinSave)).Post("/save", h.SaveHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinLoad)).Post("/load", h.LoadHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinList)).Post("/list", h.ListHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinRecent)).Post("/recent", h.RecentHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinDelete)).Post("/delete", h.DeleteHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinExport)).Get("/export.csv", h.ExportHandler)

	return r
}
