// Package apistats records per-endpoint request counts and latencies.
package apistats

import (
	"context"
	"net/http"
	"sync"
	"time"

	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	"go.uber.org/zap"
)

// recordTimeout bounds each asynchronous write to the stats store.
const recordTimeout = 5 * time.Second

// Recorder writes request statistics in the background. One Recorder is
// shared by every feature's routes.
type Recorder struct {
	store          *apistatsstore.Store
	logger         *zap.Logger
	bucketDuration time.Duration
	mu             sync.RWMutex
	pending        sync.WaitGroup
}

// NewRecorder creates a recorder that aggregates into buckets of the given size.
func NewRecorder(store *apistatsstore.Store, logger *zap.Logger, bucketDuration time.Duration) *Recorder {
	if bucketDuration <= 0 {
		bucketDuration = time.Hour
	}
	return &Recorder{
		store:          store,
		logger:         logger,
		bucketDuration: bucketDuration,
	}
}

// SetBucketDuration changes the bucket size for later recordings.
func (r *Recorder) SetBucketDuration(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bucketDuration = d
}

// BucketDuration returns the current bucket size.
func (r *Recorder) BucketDuration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bucketDuration
}

// Record stores one request's statistics without blocking the caller.
func (r *Recorder) Record(statType apistatsstore.StatType, durationMs int64, isError bool) {
	bucket := r.BucketDuration()

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.store.Record(ctx, statType, bucket, durationMs, isError); err != nil {
			r.logger.Error("failed to record API stats",
				zap.String("stat_type", string(statType)),
				zap.Int64("duration_ms", durationMs),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight recordings finish or ctx is done.
func (r *Recorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MiddlewareWithRecorder records every request through the wrapped handler
// under statType. A nil recorder passes requests straight through.
func MiddlewareWithRecorder(recorder *Recorder, statType apistatsstore.StatType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			recorder.Record(statType, time.Since(start).Milliseconds(), wrapped.statusCode >= 400)
		})
	}
}

// responseWrapper captures the status code written by the handler.
type responseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
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
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
