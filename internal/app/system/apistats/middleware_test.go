package apistats

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	"github.com/dalemusser/stratawell/internal/testutil"
	"go.uber.org/zap"
)

func TestMiddlewareWithRecorder_NilRecorderPassesThrough(t *testing.T) {
	called := false
	h := MiddlewareWithRecorder(nil, apistatsstore.StatTypeSummary)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if !called {
		t.Error("handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestMiddlewareWithRecorder_RecordsRequestsAndErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := apistatsstore.New(db)
	recorder := NewRecorder(store, zap.NewNop(), time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	status := http.StatusOK
	h := MiddlewareWithRecorder(recorder, apistatsstore.StatTypeCheckinSave)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusOK} {
		status = code
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}

	if err := recorder.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	now := time.Now().UTC()
	summaries, err := store.GetSummary(ctx, now.Add(-2*time.Hour), now)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("GetSummary() returned %d types, want 1", len(summaries))
	}
	if summaries[0].TotalRequests != 3 {
		t.Errorf("requests = %d, want 3", summaries[0].TotalRequests)
	}
	if summaries[0].TotalErrors != 1 {
		t.Errorf("errors = %d, want 1", summaries[0].TotalErrors)
	}
}

func TestRecorder_BucketDuration(t *testing.T) {
	r := NewRecorder(nil, zap.NewNop(), 0)
	if r.BucketDuration() != time.Hour {
		t.Errorf("default bucket = %v, want 1h", r.BucketDuration())
	}
	r.SetBucketDuration(15 * time.Minute)
	if r.BucketDuration() != 15*time.Minute {
		t.Errorf("bucket = %v, want 15m", r.BucketDuration())
	}
}
