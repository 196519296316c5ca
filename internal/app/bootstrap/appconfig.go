// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (STRATAWELL_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, log level, CORS for the
// root router, and body size limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// APIKey is the shared Bearer token for every /api route. When empty all
	// API requests are rejected.
	APIKey string

	// APICORSOrigins lists origins allowed to call /api from a browser.
	// Empty allows any origin.
	APICORSOrigins []string

	// RequestTimeout bounds each request and each history load.
	RequestTimeout time.Duration

	// DefaultTimezone decides "today" for users without a saved profile.
	DefaultTimezone string
	// TrendWindow is the moving-average window used when a request has none.
	TrendWindow int

	// Background jobs
	SnapshotInterval  time.Duration // How often insight snapshots are refreshed (0 disables)
	LedgerRetention   time.Duration // Ledger entries older than this are deleted
	APIStatsRetention time.Duration // API stat buckets older than this are deleted

	// APIStatsBucket is the bucket size for per-endpoint request stats.
	APIStatsBucket time.Duration

	// LedgerOnlyErrors limits the request ledger to responses with status >= 400.
	LedgerOnlyErrors bool

	// SeedDemoUser, when set, fills that user with demo check-ins on startup
	// if they have none.
	SeedDemoUser string
}

// Location returns the default time zone. ValidateConfig has already
// checked that it loads, so a failure here falls back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
