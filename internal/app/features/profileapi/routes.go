package profileapi

import (
	"net/http"

	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/apicors"
	"github.com/dalemusser/stratawell/internal/app/system/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the profile endpoints.
//
// When mounted at /api/profile:
//   - POST /api/profile/save
//   - POST /api/profile/load
//   - POST /api/profile/delete
//   - GET  /api/profile/timezones
//
// Authentication is via API key (Bearer token in Authorization header).
func Routes(h *Handler, recorder *apistats.Recorder, apiKey string, origins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.New(origins))
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeProfileSave)).Post("/save", h.SaveHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeProfileLoad)).Post("/load", h.LoadHandler)
	r.With(apistats.MiddlewareWithRecorder(recorder, apistatsstore.StatTypeProfileDelete)).Post("/delete", h.DeleteHandler)
	r.Get("/timezones", h.TimezonesHandler)

	return r
}
