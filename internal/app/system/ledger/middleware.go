// internal/app/system/ledger/middleware.go
package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	"github.com/dalemusser/stratawell/internal/app/system/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID back to the caller.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const (
	ctxKeyEntry ctxKey = iota
	ctxKeyTiming
)

// Config holds configuration for the ledger middleware.
type Config struct {
	Store  *ledgerstore.Store
	Logger *zap.Logger

	// MaxBodyPreview caps the stored request body preview. 0 disables it.
	MaxBodyPreview int

	// HeadersToCapture lists request headers copied into the entry.
	// Authorization is always redacted.
	HeadersToCapture []string

	// RedactFields lists top-level JSON body keys whose values are masked in
	// the preview.
	RedactFields []string

	// ExcludePaths are path prefixes that are never recorded.
	ExcludePaths []string

	// OnlyPaths, when set, restricts recording to these path prefixes.
	OnlyPaths []string

	// OnlyErrors records only responses with status >= 400.
	OnlyErrors bool

	// CaptureErrors copies error class and message into the entry.
	CaptureErrors bool
}

// DefaultConfig returns the configuration used for the /api routes.
func DefaultConfig(store *ledgerstore.Store, logger *zap.Logger) Config {
	return Config{
		Store:          store,
		Logger:         logger,
		MaxBodyPreview: 500,
		HeadersToCapture: []string{
			"Content-Type",
			"Accept",
			"User-Agent",
			RequestIDHeader,
			"X-Forwarded-For",
		},
		RedactFields:  []string{"note", "sick_notes", "notable_events", "display_name"},
		ExcludePaths:  []string{"/health", "/ready", "/readyz", "/livez"},
		CaptureErrors: true,
	}
}

// Ledger records API requests to the ledger store.
type Ledger struct {
	cfg     Config
	redact  map[string]struct{}
	pending sync.WaitGroup
}

// New creates a Ledger from cfg.
func New(cfg Config) *Ledger {
	redact := make(map[string]struct{}, len(cfg.RedactFields))
	for _, f := range cfg.RedactFields {
		redact[f] = struct{}{}
	}
	return &Ledger{cfg: cfg, redact: redact}
}

// Wait blocks until queued entries are stored or ctx is done.
func (l *Ledger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Ledger) skip(path string) bool {
	for _, prefix := range l.cfg.ExcludePaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if len(l.cfg.OnlyPaths) == 0 {
		return false
	}
	for _, prefix := range l.cfg.OnlyPaths {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Middleware returns HTTP middleware that records each request.
func (l *Ledger) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if l.skip(path) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := uuid.New().String()
			w.Header().Set(RequestIDHeader, requestID)

			startTime := time.Now()
			timing := &TimingContext{phases: make(map[string]float64)}

			var bodyPreview, bodyHash string
			var bodySize int64
			if l.cfg.MaxBodyPreview > 0 && r.Body != nil && r.ContentLength != 0 {
				body, err := io.ReadAll(r.Body)
				if err == nil {
					bodySize = int64(len(body))
					if len(body) > 0 {
						sum := sha256.Sum256(body)
						bodyHash = hex.EncodeToString(sum[:])[:8]
						bodyPreview = l.preview(body)
					}
					r.Body = io.NopCloser(bytes.NewReader(body))
				}
			}

			headers := make(map[string]string)
			for _, name := range l.cfg.HeadersToCapture {
				if value := r.Header.Get(name); value != "" {
					if strings.EqualFold(name, "Authorization") {
						value = "[redacted]"
					}
					headers[name] = value
				}
			}

			actorType := "anonymous"
			if _, ok := auth.BearerToken(r); ok {
				actorType = "api_key"
			}

			entry := &ledgerstore.Entry{
				RequestID:          requestID,
				ClientRequestID:    r.Header.Get(RequestIDHeader),
				Method:             r.Method,
				Path:               path,
				Query:              r.URL.RawQuery,
				Headers:            headers,
				RemoteIP:           extractIP(r),
				ActorType:          actorType,
				RequestBodySize:    bodySize,
				RequestBodyHash:    bodyHash,
				RequestBodyPreview: bodyPreview,
				RequestContentType: r.Header.Get("Content-Type"),
				StartedAt:          startTime,
				Metadata:           make(map[string]any),
			}

			ctx := context.WithValue(r.Context(), ctxKeyEntry, entry)
			ctx = context.WithValue(ctx, ctxKeyTiming, timing)
			r = r.WithContext(ctx)

			wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			endTime := time.Now()
			EndTiming(ctx)
			timing.TotalMs = float64(endTime.Sub(startTime).Microseconds()) / 1000.0

			if l.cfg.OnlyErrors && wrapped.statusCode < 400 {
				return
			}

			entry.StatusCode = wrapped.statusCode
			entry.ResponseSize = wrapped.bytesWritten
			entry.CompletedAt = endTime
			entry.Timing = ledgerstore.TimingInfo{
				DecodeMs:    timing.phases[PhaseDecode],
				DBQueryMs:   timing.phases[PhaseDB],
				AnalyticsMs: timing.phases[PhaseAnalytics],
				TotalMs:     timing.TotalMs,
			}

			if l.cfg.CaptureErrors && wrapped.statusCode >= 400 {
				if entry.ErrorClass == "" {
					entry.ErrorClass = classify(wrapped.statusCode)
				}
			} else {
				entry.ErrorClass = ""
				entry.ErrorMessage = ""
			}

			l.pending.Add(1)
			go func(e ledgerstore.Entry) {
				defer l.pending.Done()
				storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := l.cfg.Store.Create(storeCtx, e); err != nil {
					l.cfg.Logger.Error("failed to store ledger entry",
						zap.String("request_id", e.RequestID),
						zap.Error(err))
				}
			}(*entry)
		})
	}
}

// preview returns the body truncated to MaxBodyPreview, with RedactFields
// masked when the body is a JSON object.
func (l *Ledger) preview(body []byte) string {
	if len(l.redact) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err == nil {
			for k, v := range obj {
				if _, ok := l.redact[k]; ok && v != nil {
					obj[k] = "[redacted]"
				}
			}
			if b, err := json.Marshal(obj); err == nil {
				body = b
			}
		}
	}
	s := string(body)
	if len(s) > l.cfg.MaxBodyPreview {
		s = s[:l.cfg.MaxBodyPreview] + "..."
	}
	return s
}

func classify(status int) string {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return "validation"
	case status == http.StatusUnauthorized:
		return "auth"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= 500:
		return "internal"
	default:
		return "client_error"
	}
}

// responseWrapper captures the status code and response size.
type responseWrapper struct {
	http.ResponseWriter
	statusCode   int
	wroteHeader  bool
	bytesWritten int64
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// extractIP returns the client IP, preferring proxy headers.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
