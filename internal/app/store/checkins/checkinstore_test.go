package checkinstore

import (
	"testing"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/dalemusser/stratawell/internal/testutil"
)

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }

func TestStore_Upsert_InsertsThenReplaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Upsert(ctx, models.CheckIn{
		UserID:    "user1",
		Date:      "2024-03-01",
		MoodScore: intp(1),
		Note:      strp("first"),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if first.ID.IsZero() {
		t.Error("Upsert() should assign an id")
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Error("Upsert() should set created_at and updated_at")
	}

	second, err := store.Upsert(ctx, models.CheckIn{
		UserID:    "user1",
		Date:      "2024-03-01",
		MoodScore: intp(-2),
	})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Upsert() id = %s, want %s (same document)", second.ID.Hex(), first.ID.Hex())
	}
	if second.MoodScore == nil || *second.MoodScore != -2 {
		t.Errorf("Upsert() mood_score = %v, want -2", second.MoodScore)
	}
	if second.Note != nil {
		t.Errorf("Upsert() note = %q, want nil after replace", *second.Note)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Upsert() created_at changed from %v to %v", first.CreatedAt, second.CreatedAt)
	}

	n, err := store.Count(ctx, "user1")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestStore_Upsert_Normalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.Upsert(ctx, models.CheckIn{
		UserID:          "user1",
		Date:            "2024-03-02",
		Period:          false,
		PeriodStart:     true,
		FlowLevel:       intp(2),
		Exercised:       false,
		ExerciseMinutes: intp(30),
		Note:            strp(""),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.PeriodStart || got.FlowLevel != nil {
		t.Error("Upsert() should clear period details when period is false")
	}
	if got.ExerciseMinutes != nil {
		t.Error("Upsert() should clear exercise minutes when not exercised")
	}
	if got.Note != nil {
		t.Error("Upsert() should store an empty note as nil")
	}
}

func TestStore_GetByDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByDate(ctx, "user1", "2024-03-01"); err != ErrNotFound {
		t.Errorf("GetByDate() error = %v, want ErrNotFound", err)
	}

	if _, err := store.Upsert(ctx, models.CheckIn{UserID: "user1", Date: "2024-03-01", Sick: true}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.GetByDate(ctx, "user1", "2024-03-01")
	if err != nil {
		t.Fatalf("GetByDate() error = %v", err)
	}
	if !got.Sick {
		t.Error("GetByDate() sick = false, want true")
	}

	if _, err := store.GetByDate(ctx, "user2", "2024-03-01"); err != ErrNotFound {
		t.Errorf("GetByDate() for another user error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAndRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, d := range []string{"2024-03-03", "2024-03-01", "2024-03-05", "2024-03-02"} {
		if _, err := store.Upsert(ctx, models.CheckIn{UserID: "user1", Date: d}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", d, err)
		}
	}
	if _, err := store.Upsert(ctx, models.CheckIn{UserID: "other", Date: "2024-03-04"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	all, err := store.ListAll(ctx, "user1")
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	wantAll := []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-05"}
	if len(all) != len(wantAll) {
		t.Fatalf("ListAll() len = %d, want %d", len(all), len(wantAll))
	}
	for i, c := range all {
		if c.Date != wantAll[i] {
			t.Errorf("ListAll()[%d].Date = %q, want %q", i, c.Date, wantAll[i])
		}
	}

	since, err := store.List(ctx, "user1", "2024-03-03")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(since) != 2 || since[0].Date != "2024-03-03" {
		t.Errorf("List(since 2024-03-03) = %d items, want 2 starting at 2024-03-03", len(since))
	}

	recent, err := store.Recent(ctx, "user1", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Date != "2024-03-05" || recent[1].Date != "2024-03-03" {
		t.Errorf("Recent(2) = %+v, want 2024-03-05 then 2024-03-03", recent)
	}

	none, err := store.ListAll(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("ListAll() for unknown user = %v, want empty slice", none)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Upsert(ctx, models.CheckIn{UserID: "user1", Date: "2024-03-01"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	deleted, err := store.Delete(ctx, "user1", "2024-03-01")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("Delete() = false, want true")
	}

	deleted, err = store.Delete(ctx, "user1", "2024-03-01")
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if deleted {
		t.Error("second Delete() = true, want false")
	}
}

func TestStore_UsersUpdatedSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().UTC().Add(-time.Second)
	for _, u := range []string{"a", "b", "a"} {
		if _, err := store.Upsert(ctx, models.CheckIn{UserID: u, Date: "2024-03-01"}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	users, err := store.UsersUpdatedSince(ctx, before)
	if err != nil {
		t.Fatalf("UsersUpdatedSince() error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("UsersUpdatedSince() = %v, want 2 distinct users", users)
	}

	later, err := store.UsersUpdatedSince(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("UsersUpdatedSince() error = %v", err)
	}
	if len(later) != 0 {
		t.Errorf("UsersUpdatedSince(future) = %v, want none", later)
	}
}
