package snapshotstore

import (
	"testing"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"github.com/dalemusser/stratawell/internal/testutil"
)

func TestStore_UpsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "user1"); err != ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	last := "2024-03-10"
	snap := Snapshot{
		UserID: "user1",
		Today:  "2024-03-10",
		Summary: analytics.Summary{
			Range:        analytics.Range30Days,
			CheckinCount: 12,
			Streaks:      analytics.StreakInfo{Current: 3, Longest: 5, LastCheckinDate: &last},
			Cycle: &analytics.CyclePrediction{
				AverageCycleLength: 28,
				NextPeriodStart:    "2024-03-25",
				NextPeriodEnd:      "2024-03-29",
				Confidence:         analytics.ConfidenceMedium,
				CyclesUsed:         2,
			},
			Heatmap: []analytics.HeatmapPoint{{Date: "2024-03-10", Count: 2}},
		},
	}
	if err := store.Upsert(ctx, snap); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Summary.CheckinCount != 12 {
		t.Errorf("Get() checkin_count = %d, want 12", got.Summary.CheckinCount)
	}
	if got.Summary.Streaks.LastCheckinDate == nil || *got.Summary.Streaks.LastCheckinDate != last {
		t.Errorf("Get() last_checkin_date = %v, want %s", got.Summary.Streaks.LastCheckinDate, last)
	}
	if got.Summary.Cycle == nil || got.Summary.Cycle.Confidence != analytics.ConfidenceMedium {
		t.Errorf("Get() cycle = %+v, want medium confidence", got.Summary.Cycle)
	}
	if got.ComputedAt.IsZero() {
		t.Error("Upsert() should stamp computed_at")
	}

	// Replacing keeps one document per user.
	snap.Summary.CheckinCount = 13
	snap.Summary.Cycle = nil
	if err := store.Upsert(ctx, snap); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	n, err := db.Collection(CollectionName).CountDocuments(ctx, map[string]any{"user_id": "user1"})
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if n != 1 {
		t.Errorf("snapshot count = %d, want 1", n)
	}
	got, err = store.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Summary.CheckinCount != 13 || got.Summary.Cycle != nil {
		t.Errorf("Get() after replace = %+v", got.Summary)
	}
}

func TestStore_LastComputedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	zero, err := store.LastComputedAt(ctx)
	if err != nil {
		t.Fatalf("LastComputedAt() error = %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("LastComputedAt() on empty = %v, want zero", zero)
	}

	older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{newer, older} {
		snap := Snapshot{UserID: []string{"a", "b"}[i], ComputedAt: at}
		if err := store.Upsert(ctx, snap); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	got, err := store.LastComputedAt(ctx)
	if err != nil {
		t.Fatalf("LastComputedAt() error = %v", err)
	}
	if !got.Equal(newer) {
		t.Errorf("LastComputedAt() = %v, want %v", got, newer)
	}
}
