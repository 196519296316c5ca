package analyticsapi

import (
	"net/http"

	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/apicors"
	"github.com/dalemusser/stratawell/internal/app/system/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the analytics endpoints.
//
// When mounted at /api/analytics:
//   - POST /api/analytics/summary
//   - POST /api/analytics/correlations
//   - POST /api/analytics/streaks
//   - POST /api/analytics/trends
//   - POST /api/analytics/cycle
//   - POST /api/analytics/snapshot
func Routes(h *Handler, recorder *apistats.Recorder, apiKey string, origins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(apicors.New(origins))
	r.Use(auth.APIKeyAuth(apiKey, logger))

	for _, ep := range []struct {
		path     string
		statType apistatsstore.StatType
		handler  http.HandlerFunc
	}{
		{"/summary", apistatsstore.StatTypeSummary, h.SummaryHandler},
		{"/correlations", apistatsstore.StatTypeCorrelations, h.CorrelationsHandler},
		{"/streaks", apistatsstore.StatTypeStreaks, h.StreaksHandler},
		{"/trends", apistatsstore.StatTypeTrends, h.TrendsHandler},
		{"/cycle", apistatsstore.StatTypeCycle, h.CycleHandler},
		{"/snapshot", apistatsstore.StatTypeSnapshot, h.SnapshotHandler},
	} {
		r.With(apistats.MiddlewareWithRecorder(recorder, ep.statType)).Post(ep.path, ep.handler)
	}

	return r
}
