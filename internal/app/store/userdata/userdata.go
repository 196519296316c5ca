// internal/app/store/userdata/userdata.go
package userdata

import (
	"context"

	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Result reports what Erase removed.
type Result struct {
	CheckinsDeleted int64 `json:"checkins_deleted"`
	ProfileDeleted  bool  `json:"profile_deleted"`
	SnapshotDeleted bool  `json:"snapshot_deleted"`
}

// Eraser removes everything stored for a user.
type Eraser struct {
	db        *mongo.Database
	checkins  *checkinstore.Store
	profiles  *profilestore.Store
	snapshots *snapshotstore.Store
	logger    *zap.Logger
}

// New creates an Eraser over db.
func New(db *mongo.Database, logger *zap.Logger) *Eraser {
	return &Eraser{
		db:        db,
		checkins:  checkinstore.New(db),
		profiles:  profilestore.New(db),
		snapshots: snapshotstore.New(db),
		logger:    logger,
	}
}

// Erase deletes the user's check-ins, profile and insight snapshot in one
// transaction where the deployment allows it. Erasing a user with no data
// succeeds with a zero Result.
func (e *Eraser) Erase(ctx context.Context, userID string) (Result, error) {
	var res Result
	err := txn.Run(ctx, e.db, e.logger, func(ctx context.Context) error {
		res = Result{}

		n, err := e.checkins.DeleteAll(ctx, userID)
		if err != nil {
			return err
		}
		res.CheckinsDeleted = n

		if res.ProfileDeleted, err = e.profiles.Delete(ctx, userID); err != nil {
			return err
		}
		res.SnapshotDeleted, err = e.snapshots.Delete(ctx, userID)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	e.logger.Info("user data erased",
		zap.String("user_id", userID),
		zap.Int64("checkins_deleted", res.CheckinsDeleted),
		zap.Bool("profile_deleted", res.ProfileDeleted),
		zap.Bool("snapshot_deleted", res.SnapshotDeleted))
	return res, nil
}
