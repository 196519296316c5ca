package ledger

import (
	"context"
	"time"

	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
)

// Timing phases recorded by handlers.
const (
	PhaseDecode    = "decode"
	PhaseDB        = "db"
	PhaseAnalytics = "analytics"
)

// TimingContext accumulates per-phase durations for one request.
type TimingContext struct {
	phases  map[string]float64
	current string
	start   time.Time
	TotalMs float64
}

// StartTiming ends the running phase, if any, and starts phase.
func StartTiming(ctx context.Context, phase string) {
	timing, ok := ctx.Value(ctxKeyTiming).(*TimingContext)
	if !ok {
		return
	}
	if timing.current != "" {
		timing.phases[timing.current] += float64(time.Since(timing.start).Microseconds()) / 1000.0
	}
	timing.current = phase
	timing.start = time.Now()
}

// EndTiming ends the running phase.
func EndTiming(ctx context.Context) {
	timing, ok := ctx.Value(ctxKeyTiming).(*TimingContext)
	if !ok || timing.current == "" {
		return
	}
	timing.phases[timing.current] += float64(time.Since(timing.start).Microseconds()) / 1000.0
	timing.current = ""
}

func entryFrom(ctx context.Context) *ledgerstore.Entry {
	entry, _ := ctx.Value(ctxKeyEntry).(*ledgerstore.Entry)
	return entry
}

// AddMetadata attaches a key/value pair to the request's entry.
func AddMetadata(ctx context.Context, key string, value any) {
	if entry := entryFrom(ctx); entry != nil {
		entry.Metadata[key] = value
	}
}

// SetErrorClass overrides the status-derived error class.
func SetErrorClass(ctx context.Context, class string) {
	if entry := entryFrom(ctx); entry != nil {
		entry.ErrorClass = class
	}
}

// SetErrorMessage records the message returned to the caller.
func SetErrorMessage(ctx context.Context, message string) {
	if entry := entryFrom(ctx); entry != nil {
		entry.ErrorMessage = message
	}
}

// GetErrorClass returns the error class set for the request.
func GetErrorClass(ctx context.Context) string {
	if entry := entryFrom(ctx); entry != nil {
		return entry.ErrorClass
	}
	return ""
}

// GetErrorMessage returns the error message set for the request.
func GetErrorMessage(ctx context.Context) string {
	if entry := entryFrom(ctx); entry != nil {
		return entry.ErrorMessage
	}
	return ""
}

// GetRequestID returns the request ID, or "" outside the middleware.
func GetRequestID(ctx context.Context) string {
	if entry := entryFrom(ctx); entry != nil {
		return entry.RequestID
	}
	return ""
}
