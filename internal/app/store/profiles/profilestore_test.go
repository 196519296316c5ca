package profilestore

import (
	"testing"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/dalemusser/stratawell/internal/testutil"
)

func TestStore_Get_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "user1"); err != ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	p, err := store.GetOrDefault(ctx, "user1")
	if err != nil {
		t.Fatalf("GetOrDefault() error = %v", err)
	}
	if p.Timezone != models.DefaultTimezone {
		t.Errorf("GetOrDefault() timezone = %q, want %q", p.Timezone, models.DefaultTimezone)
	}
	if len(p.TrackedFeatures) != len(models.AllFeatures) {
		t.Errorf("GetOrDefault() tracked %d features, want %d", len(p.TrackedFeatures), len(models.AllFeatures))
	}
}

func TestStore_Upsert_And_Get(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	name := "Sam"
	reminder := "21:30"
	saved, err := store.Upsert(ctx, models.Profile{
		UserID:          "user1",
		DisplayName:     &name,
		ReminderTime:    &reminder,
		Timezone:        "Europe/Berlin",
		TrackedFeatures: []string{"mood", "sleep"},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if saved.ID.IsZero() {
		t.Error("Upsert() should assign an id")
	}

	got, err := store.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Timezone != "Europe/Berlin" {
		t.Errorf("Get() timezone = %q, want %q", got.Timezone, "Europe/Berlin")
	}
	if got.ReminderTime == nil || *got.ReminderTime != "21:30" {
		t.Errorf("Get() reminder_time = %v, want 21:30", got.ReminderTime)
	}
	if len(got.TrackedFeatures) != 2 {
		t.Errorf("Get() tracked_features = %v, want 2 entries", got.TrackedFeatures)
	}

	// Saving again updates in place and may clear the reminder.
	updated, err := store.Upsert(ctx, models.Profile{UserID: "user1"})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if updated.ID != saved.ID {
		t.Error("second Upsert() created a new document")
	}
	if updated.ReminderTime != nil {
		t.Errorf("second Upsert() reminder_time = %q, want nil", *updated.ReminderTime)
	}
	if updated.Timezone != models.DefaultTimezone {
		t.Errorf("second Upsert() timezone = %q, want %q", updated.Timezone, models.DefaultTimezone)
	}
}

func TestStore_Timezones(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Upsert(ctx, models.Profile{UserID: "a", Timezone: "Asia/Tokyo"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := store.Upsert(ctx, models.Profile{UserID: "b"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tz, err := store.Timezones(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Timezones() error = %v", err)
	}
	if tz["a"] != "Asia/Tokyo" || tz["b"] != "UTC" {
		t.Errorf("Timezones() = %v", tz)
	}
	if _, ok := tz["c"]; ok {
		t.Error("Timezones() should omit users without a profile")
	}
}

func TestStore_Location(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	loc, err := store.Location(ctx, "nobody", tokyo)
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc != tokyo {
		t.Errorf("Location(no profile) = %v, want fallback %v", loc, tokyo)
	}

	if loc, _ := store.Location(ctx, "nobody", nil); loc != time.UTC {
		t.Errorf("Location(no profile, nil fallback) = %v, want UTC", loc)
	}

	if _, err := store.Upsert(ctx, models.Profile{UserID: "user1", Timezone: "America/Chicago"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	loc, err = store.Location(ctx, "user1", tokyo)
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "America/Chicago" {
		t.Errorf("Location(user1) = %v, want America/Chicago", loc)
	}
}
