package ledger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	"github.com/dalemusser/stratawell/internal/testutil"
	"go.uber.org/zap"
)

func newLedger(t *testing.T, mutate func(*Config)) (*Ledger, *ledgerstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := ledgerstore.New(db)
	cfg := DefaultConfig(store, zap.NewNop())
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), store
}

func TestMiddleware_RecordsEntry(t *testing.T) {
	l, store := newLedger(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var seenID string
	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		AddMetadata(r.Context(), "user_id", "user1")
		StartTiming(r.Context(), PhaseDB)
		EndTiming(r.Context())
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))

	body := `{"user_id":"user1","date":"2024-03-01","note":"private words","mood_score":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkins/save", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if seenID == "" {
		t.Fatal("GetRequestID() inside handler = \"\"")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seenID {
		t.Errorf("%s header = %q, want %q", RequestIDHeader, got, seenID)
	}

	entry, err := store.GetByRequestID(ctx, seenID)
	if err != nil {
		t.Fatalf("GetByRequestID() error = %v", err)
	}
	if entry.StatusCode != http.StatusCreated {
		t.Errorf("status_code = %d, want %d", entry.StatusCode, http.StatusCreated)
	}
	if entry.ActorType != "api_key" {
		t.Errorf("actor_type = %q, want api_key", entry.ActorType)
	}
	if entry.Metadata["user_id"] != "user1" {
		t.Errorf("metadata user_id = %v, want user1", entry.Metadata["user_id"])
	}
	if strings.Contains(entry.RequestBodyPreview, "private words") {
		t.Errorf("body preview leaks note: %s", entry.RequestBodyPreview)
	}
	if !strings.Contains(entry.RequestBodyPreview, "[redacted]") {
		t.Errorf("body preview = %s, want redacted note", entry.RequestBodyPreview)
	}
	if entry.RequestBodySize != int64(len(body)) {
		t.Errorf("request_body_size = %d, want %d", entry.RequestBodySize, len(body))
	}
	if len(entry.RequestBodyHash) != 8 {
		t.Errorf("request_body_hash = %q, want 8 hex chars", entry.RequestBodyHash)
	}
	if entry.ResponseSize != int64(len(`{"ok":true}`)) {
		t.Errorf("response_size = %d", entry.ResponseSize)
	}
	if entry.ErrorClass != "" {
		t.Errorf("error_class = %q on success", entry.ErrorClass)
	}
}

func TestMiddleware_BodyStillReadable(t *testing.T) {
	l, _ := newLedger(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var got string
	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(r.Body); err != nil {
			t.Errorf("read body: %v", err)
		}
		got = buf.String()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/profile/save", strings.NewReader(`{"user_id":"u"}`)))
	_ = l.Wait(ctx)

	if got != `{"user_id":"u"}` {
		t.Errorf("handler saw body %q", got)
	}
}

func TestMiddleware_ErrorClassAndMessage(t *testing.T) {
	l, store := newLedger(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetErrorMessage(r.Context(), "invalid date")
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkins/load", nil))
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	entry, err := store.GetByRequestID(ctx, rec.Header().Get(RequestIDHeader))
	if err != nil {
		t.Fatalf("GetByRequestID() error = %v", err)
	}
	if entry.ErrorClass != "validation" {
		t.Errorf("error_class = %q, want validation", entry.ErrorClass)
	}
	if entry.ErrorMessage != "invalid date" {
		t.Errorf("error_message = %q, want %q", entry.ErrorMessage, "invalid date")
	}
	if entry.ActorType != "anonymous" {
		t.Errorf("actor_type = %q, want anonymous", entry.ActorType)
	}
}

func TestMiddleware_OnlyErrorsAndExclusions(t *testing.T) {
	l, store := newLedger(t, func(c *Config) { c.OnlyErrors = true })
	ctx, cancel := testutil.TestContext()
	defer cancel()

	status := http.StatusOK
	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	for _, tc := range []struct {
		path string
		code int
	}{
		{"/api/checkins/save", http.StatusOK},
		{"/health", http.StatusServiceUnavailable},
		{"/api/checkins/save", http.StatusInternalServerError},
	} {
		status = tc.code
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, tc.path, nil))
	}
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	res, err := store.List(ctx, ledgerstore.ListFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.TotalCount != 1 {
		t.Fatalf("recorded %d entries, want 1", res.TotalCount)
	}
	if res.Entries[0].StatusCode != http.StatusInternalServerError || res.Entries[0].ErrorClass != "internal" {
		t.Errorf("entry = %d/%q, want 500/internal", res.Entries[0].StatusCode, res.Entries[0].ErrorClass)
	}
}

func TestHelpers_OutsideMiddleware(t *testing.T) {
	ctx := context.Background()
	// none of these may panic without a ledger entry
	StartTiming(ctx, PhaseDB)
	EndTiming(ctx)
	AddMetadata(ctx, "k", "v")
	SetErrorClass(ctx, "x")
	SetErrorMessage(ctx, "x")
	if GetRequestID(ctx) != "" || GetErrorClass(ctx) != "" || GetErrorMessage(ctx) != "" {
		t.Error("helpers should return empty values outside the middleware")
	}
}

func TestExtractIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := extractIP(req); got != "10.0.0.1" {
		t.Errorf("extractIP() = %q, want 10.0.0.1", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := extractIP(req); got != "203.0.113.7" {
		t.Errorf("extractIP() with XFF = %q, want 203.0.113.7", got)
	}
}
