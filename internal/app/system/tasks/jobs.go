// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"github.com/dalemusser/stratawell/internal/app/store/apistats"
	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.uber.org/zap"
)

// Job names.
const (
	InsightSnapshotJobName   = "insight-snapshot"
	LedgerRetentionJobName   = "ledger-retention"
	APIStatsRetentionJobName = "api-stats-retention"
)

// retentionInterval is how often the retention jobs sweep.
const retentionInterval = time.Hour

// Snapshotter recomputes stored insight summaries.
type Snapshotter struct {
	Checkins  *checkinstore.Store
	Profiles  *profilestore.Store
	Snapshots *snapshotstore.Store
	Logger    *zap.Logger

	// Range and Window are passed to analytics.Summarize.
	Range  analytics.DateRange
	Window int
	// DefaultLocation decides "today" for users without a profile timezone.
	DefaultLocation *time.Location
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// SnapshotResult reports one snapshot pass.
type SnapshotResult struct {
	Users    int
	Written  int
	Skipped  int
	Duration time.Duration
}

// Run recomputes snapshots for every user with a check-in written since the
// newest stored snapshot. A user whose history cannot be summarized is
// skipped and logged; store failures abort the pass.
func (s *Snapshotter) Run(ctx context.Context) (SnapshotResult, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	start := now().UTC()
	var res SnapshotResult

	since, err := s.Snapshots.LastComputedAt(ctx)
	if err != nil {
		return res, err
	}
	users, err := s.Checkins.UsersUpdatedSince(ctx, since)
	if err != nil {
		return res, err
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	zones, err := s.Profiles.Timezones(ctx, users)
	if err != nil {
		return res, err
	}

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		written, err := s.refresh(ctx, userID, zones[userID], start)
		if err != nil {
			return res, err
		}
		if written {
			res.Written++
		} else {
			res.Skipped++
		}
	}
	res.Duration = now().UTC().Sub(start)
	return res, nil
}

func (s *Snapshotter) refresh(ctx context.Context, userID, tz string, computedAt time.Time) (bool, error) {
	history, err := s.Checkins.ListAll(ctx, userID)
	if err != nil {
		return false, err
	}

	loc := s.DefaultLocation
	if loc == nil {
		loc = time.UTC
	}
	if tz != "" {
		loc = models.Profile{Timezone: tz}.Location()
	}
	today := computedAt.In(loc)

	window := s.Window
	if window < 1 {
		window = analytics.DefaultTrendWindow
	}
	rng := s.Range
	if rng == "" {
		rng = analytics.DefaultRange
	}

	summary, err := analytics.Summarize(history, rng, today, window)
	if err != nil {
		if analytics.IsInputError(err) {
			s.Logger.Warn("snapshot skipped: history not summarizable",
				zap.String("user_id", userID),
				zap.Error(err))
			return false, nil
		}
		return false, err
	}

	err = s.Snapshots.Upsert(ctx, snapshotstore.Snapshot{
		UserID:     userID,
		Today:      today.Format(models.DateLayout),
		Summary:    summary,
		ComputedAt: computedAt,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsightSnapshotJob wraps s as a runner job.
func InsightSnapshotJob(s *Snapshotter, interval time.Duration) Job {
	return Job{
		Name:     InsightSnapshotJobName,
		Interval: interval,
		Run: func(ctx context.Context) error {
			res, err := s.Run(ctx)
			if err != nil {
				return err
			}
			if res.Users > 0 {
				s.Logger.Info("insight snapshots refreshed",
					zap.Int("users", res.Users),
					zap.Int("written", res.Written),
					zap.Int("skipped", res.Skipped),
					zap.Duration("duration", res.Duration))
			}
			return nil
		},
	}
}

// LedgerRetentionJob deletes ledger entries older than retention.
func LedgerRetentionJob(store *ledgerstore.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     LedgerRetentionJobName,
		Interval: retentionInterval,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			deleted, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned ledger entries",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// APIStatsRetentionJob deletes API stat buckets older than retention.
func APIStatsRetentionJob(store *apistats.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     APIStatsRetentionJobName,
		Interval: retentionInterval,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			deleted, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned api stat buckets",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
