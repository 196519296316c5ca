// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for user profiles.
const CollectionName = "profiles"

// ErrNotFound is returned when a user has never saved a profile.
var ErrNotFound = errors.New("profile not found")

// Store provides access to the profiles collection.
// There is at most one profile per user_id.
type Store struct {
	c *mongo.Collection
}

// New creates a new profile store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Get returns the saved profile for a user.
func (s *Store) Get(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// GetOrDefault returns the saved profile, or the default profile when the
// user has none.
func (s *Store) GetOrDefault(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err == ErrNotFound {
		return models.DefaultProfile(userID), nil
	}
	return p, err
}

// Location returns the time zone from the user's saved profile, or fallback
// when the user has none. A nil fallback means UTC.
func (s *Store) Location(ctx context.Context, userID string, fallback *time.Location) (*time.Location, error) {
	p, err := s.Get(ctx, userID)
	if err == ErrNotFound {
		if fallback == nil {
			return time.UTC, nil
		}
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Location(), nil
}

// Delete removes a user's profile. Returns false if there was none.
func (s *Store) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Upsert saves a user's profile and returns the stored document.
func (s *Store) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.Timezone == "" {
		p.Timezone = models.DefaultTimezone
	}
	if p.TrackedFeatures == nil {
		p.TrackedFeatures = []string{}
	}
	now := time.Now().UTC()

	filter := bson.M{"user_id": p.UserID}
	update := bson.M{
		"$set": bson.M{
			"display_name":     p.DisplayName,
			"reminder_time":    p.ReminderTime,
			"timezone":         p.Timezone,
			"tracked_features": p.TrackedFeatures,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.Profile
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return models.Profile{}, err
	}
	return out, nil
}

// Timezones returns the timezone for each of the given users that has a
// saved profile. Users without a profile are absent from the map.
func (s *Store) Timezones(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"user_id": 1, "timezone": 1})
	cur, err := s.c.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p models.Profile
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.UserID] = p.Timezone
	}
	return out, cur.Err()
}
