package userdata

import (
	"testing"

	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/dalemusser/stratawell/internal/testutil"
	"go.uber.org/zap"
)

func TestEraser_Erase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	checkins := checkinstore.New(db)
	profiles := profilestore.New(db)
	snapshots := snapshotstore.New(db)

	for _, c := range []models.CheckIn{
		{UserID: "gone", Date: "2024-03-08"},
		{UserID: "gone", Date: "2024-03-09"},
		{UserID: "gone", Date: "2024-03-10"},
		{UserID: "kept", Date: "2024-03-10"},
	} {
		if _, err := checkins.Upsert(ctx, c); err != nil {
			t.Fatalf("seed check-in: %v", err)
		}
	}
	for _, id := range []string{"gone", "kept"} {
		if _, err := profiles.Upsert(ctx, models.Profile{UserID: id}); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
		if err := snapshots.Upsert(ctx, snapshotstore.Snapshot{UserID: id, Today: "2024-03-10"}); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}

	e := New(db, zap.NewNop())
	res, err := e.Erase(ctx, "gone")
	if err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	want := Result{CheckinsDeleted: 3, ProfileDeleted: true, SnapshotDeleted: true}
	if res != want {
		t.Errorf("Erase() = %+v, want %+v", res, want)
	}

	if n, _ := checkins.Count(ctx, "gone"); n != 0 {
		t.Errorf("check-ins left for erased user = %d, want 0", n)
	}
	if _, err := profiles.Get(ctx, "gone"); err != profilestore.ErrNotFound {
		t.Errorf("profile Get() error = %v, want ErrNotFound", err)
	}
	if _, err := snapshots.Get(ctx, "gone"); err != snapshotstore.ErrNotFound {
		t.Errorf("snapshot Get() error = %v, want ErrNotFound", err)
	}

	if n, _ := checkins.Count(ctx, "kept"); n != 1 {
		t.Errorf("check-ins for other user = %d, want 1", n)
	}
	if _, err := profiles.Get(ctx, "kept"); err != nil {
		t.Errorf("other user's profile Get() error = %v", err)
	}

	t.Run("nothing to erase", func(t *testing.T) {
		res, err := e.Erase(ctx, "gone")
		if err != nil {
			t.Fatalf("Erase() error = %v", err)
		}
		if res != (Result{}) {
			t.Errorf("Erase() = %+v, want zero result", res)
		}
	})
}
