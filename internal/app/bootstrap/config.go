// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratawell/internal/app/system/apicors"
	"github.com/dalemusser/stratawell/internal/app/system/auth"
	"github.com/dalemusser/stratawell/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATAWELL"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, default_timezone, etc.
//   - Environment variables: STRATAWELL_MONGO_URI, STRATAWELL_DEFAULT_TIMEZONE, etc.
//   - Command-line flags: --mongo_uri, --default_timezone, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratawell", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// API access
	{Name: "api_key", Default: "", Desc: "Bearer API key for /api routes (empty rejects every API request)"},
	{Name: "api_cors_origins", Default: "", Desc: "Comma-separated origins allowed to call /api (empty allows any)"},
	{Name: "request_timeout", Default: "30s", Desc: "Per-request timeout for /api routes"},

	// Analytics defaults
	{Name: "default_timezone", Default: "UTC", Desc: "IANA time zone for users without a profile"},
	{Name: "trend_window", Default: 7, Desc: "Default moving-average window in points"},

	// Background jobs
	{Name: "snapshot_interval", Default: "15m", Desc: "How often insight snapshots are refreshed (0 disables)"},
	{Name: "ledger_retention", Default: "720h", Desc: "Delete ledger entries older than this (e.g., 720h)"},
	{Name: "api_stats_retention", Default: "2160h", Desc: "Delete API stat buckets older than this (e.g., 2160h)"},

	// API stats and ledger
	{Name: "api_stats_bucket", Default: "1h", Desc: "API stats bucket duration (e.g., '1m', '15m', '1h', '24h')"},
	{Name: "ledger_only_errors", Default: true, Desc: "Record only API responses with status >= 400 in the ledger"},

	// Development
	{Name: "seed_demo_user", Default: "", Desc: "User ID to fill with demo check-ins on startup (dev only)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml
// files, STRATAWELL_* environment variables and command-line flags, merged
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey:         appValues.String("api_key"),
		APICORSOrigins: apicors.ParseOrigins(appValues.String("api_cors_origins")),
		RequestTimeout: appValues.Duration("request_timeout", 30*time.Second),

		DefaultTimezone: appValues.String("default_timezone"),
		TrendWindow:     appValues.Int("trend_window"),

		SnapshotInterval:  appValues.Duration("snapshot_interval", 15*time.Minute),
		LedgerRetention:   appValues.Duration("ledger_retention", 30*24*time.Hour),
		APIStatsRetention: appValues.Duration("api_stats_retention", 90*24*time.Hour),

		APIStatsBucket:   appValues.Duration("api_stats_bucket", time.Hour),
		LedgerOnlyErrors: appValues.Bool("ledger_only_errors"),

		SeedDemoUser: appValues.String("seed_demo_user"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Invalid values abort startup. A weak API key only warns, so local
// development keeps working.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateAppConfig(appCfg); err != nil {
		logger.Error("invalid app config", zap.Error(err))
		return err
	}

	switch {
	case appCfg.APIKey == "":
		logger.Warn("api_key is empty; every /api request will be rejected")
	case auth.IsWeakKey(appCfg.APIKey):
		if coreCfg != nil && coreCfg.Env == "prod" {
			return errors.New("api_key is too weak for production")
		}
		logger.Warn("api_key looks weak; set a long random key before production")
	}
	return nil
}

// validateAppConfig checks the values that have no safe fallback.
func validateAppConfig(appCfg AppConfig) error {
	if !inputval.IsValidTimezone(appCfg.DefaultTimezone) {
		return fmt.Errorf("default_timezone %q is not a valid IANA time zone", appCfg.DefaultTimezone)
	}
	if appCfg.TrendWindow < 1 {
		return fmt.Errorf("trend_window must be at least 1, got %d", appCfg.TrendWindow)
	}
	if appCfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", appCfg.RequestTimeout)
	}
	if appCfg.SnapshotInterval < 0 {
		return fmt.Errorf("snapshot_interval must not be negative, got %s", appCfg.SnapshotInterval)
	}
	if appCfg.LedgerRetention <= 0 || appCfg.APIStatsRetention <= 0 {
		return errors.New("ledger_retention and api_stats_retention must be positive")
	}
	return nil
}
