// internal/app/store/snapshots/snapshotstore.go
package snapshotstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for precomputed insight summaries.
const CollectionName = "insight_snapshots"

// ErrNotFound is returned when no snapshot has been computed for a user.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the latest summary computed for a user by the background job.
type Snapshot struct {
	UserID     string            `bson:"user_id" json:"user_id"`
	Today      string            `bson:"today" json:"today"` // user's calendar date at compute time
	Summary    analytics.Summary `bson:"summary" json:"summary"`
	ComputedAt time.Time         `bson:"computed_at" json:"computed_at"`
}

// Store provides access to the insight_snapshots collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new snapshot store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Upsert replaces the user's snapshot.
func (s *Store) Upsert(ctx context.Context, snap Snapshot) error {
	if snap.ComputedAt.IsZero() {
		snap.ComputedAt = time.Now().UTC()
	}
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"user_id": snap.UserID},
		snap,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Get returns the user's latest snapshot.
func (s *Store) Get(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Delete removes the user's snapshot. Returns false if there was none.
func (s *Store) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// LastComputedAt returns the newest computed_at across all snapshots, or the
// zero time when none exist.
func (s *Store) LastComputedAt(ctx context.Context) (time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "computed_at", Value: -1}}).
		SetProjection(bson.M{"computed_at": 1})
	var snap Snapshot
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return snap.ComputedAt, nil
}
