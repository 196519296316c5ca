// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	analyticsapifeature "github.com/dalemusser/stratawell/internal/app/features/analyticsapi"
	checkinapifeature "github.com/dalemusser/stratawell/internal/app/features/checkinapi"
	healthfeature "github.com/dalemusser/stratawell/internal/app/features/health"
	opsapifeature "github.com/dalemusser/stratawell/internal/app/features/opsapi"
	profileapifeature "github.com/dalemusser/stratawell/internal/app/features/profileapi"
	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/app/store/userdata"
	"github.com/dalemusser/stratawell/internal/app/system/jsonutil"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every application route lives under /api
// and is authenticated with the shared API key; health endpoints are open.
//
// Route map:
//
//	/api/checkins/*   record, list, delete, export check-ins
//	/api/analytics/*  summary, streaks, correlations, trends, cycle, snapshot
//	/api/profile/*    save, load and erase profiles, time zone picker data
//	/api/ops/*        API stats and the request ledger
//	/health, /ready, /readyz, /livez
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	checkins := checkinstore.New(db)
	profiles := profilestore.New(db)
	snapshots := snapshotstore.New(db)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.Timeout(appCfg.RequestTimeout))

	// CORS must run before anything that can reject a preflight request.
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.NotFound(w, req, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.Error(w, req, http.StatusMethodNotAllowed, "method not allowed")
	})

	// ─────────────────────────────────────────────────────────────────────────────
	// API Routes
	// API key auth per feature router; the request ledger wraps them all.
	// ─────────────────────────────────────────────────────────────────────────────

	origins := appCfg.APICORSOrigins

	r.Route("/api", func(r chi.Router) {
		if apiLedger != nil {
			r.Use(apiLedger.Middleware())
		}

		checkinHandler := checkinapifeature.NewHandler(checkins, profiles, appCfg.Location(), logger)
		r.Mount("/checkins", checkinapifeature.Routes(checkinHandler, apiStatsRecorder, appCfg.APIKey, origins, logger))

		analyticsHandler := analyticsapifeature.NewHandler(checkins, profiles, snapshots, analyticsapifeature.Options{
			DefaultLocation: appCfg.Location(),
			TrendWindow:     appCfg.TrendWindow,
		}, logger)
		r.Mount("/analytics", analyticsapifeature.Routes(analyticsHandler, apiStatsRecorder, appCfg.APIKey, origins, logger))

		profileHandler := profileapifeature.NewHandler(profiles, userdata.New(db, logger), logger)
		r.Mount("/profile", profileapifeature.Routes(profileHandler, apiStatsRecorder, appCfg.APIKey, origins, logger))

		opsHandler := opsapifeature.NewHandler(ledgerstore.New(db), apistatsstore.New(db), logger)
		r.Mount("/ops", opsapifeature.Routes(opsHandler, appCfg.APIKey, logger))
	})

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, snapshots, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	return r, nil
}
