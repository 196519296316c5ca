// internal/app/store/checkins/checkinstore.go
package checkinstore

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

// CollectionName is the MongoDB collection for daily check-ins.
const CollectionName = "checkins"

// ErrNotFound is returned when no check-in exists for a user and date.
var ErrNotFound = errors.New("check-in not found")

// Store provides access to the checkins collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new check-in store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Upsert stores c as the check-in for (c.UserID, c.Date), replacing any earlier
// values for that day. Dependent fields are normalized first. The stored
// document is returned.
func (s *Store) Upsert(ctx context.Context, c models.CheckIn) (models.CheckIn, error) {
	c.Normalize()
	now := time.Now().UTC()

	filter := bson.M{"user_id": c.UserID, "date": c.Date}
	update := bson.M{
		"$set": bson.M{
			"mood_label":        c.MoodLabel,
			"mood_score":        c.MoodScore,
			"energy_label":      c.EnergyLabel,
			"energy_score":      c.EnergyScore,
			"appetite":          c.Appetite,
			"sleep_hours":       c.SleepHours,
			"note":              c.Note,
			"mood_tags":         c.MoodTags,
			"bloating":          c.Bloating,
			"bloating_severity": c.BloatingSeverity,
			"exercised":         c.Exercised,
			"exercise_type":     c.ExerciseType,
			"exercise_minutes":  c.ExerciseMinutes,
			"period":            c.Period,
			"period_start":      c.PeriodStart,
			"flow_level":        c.FlowLevel,
			"sick":              c.Sick,
			"pain_areas":        c.PainAreas,
			"sick_notes":        c.SickNotes,
			"notable_events":    c.NotableEvents,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.CheckIn
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if wafflemongo.IsDup(err) {
		// Two concurrent upserts for the same day: the loser retries as an update.
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	}
	if err != nil {
		return models.CheckIn{}, err
	}
	return out, nil
}

// GetByDate returns the check-in for a user on a date.
func (s *Store) GetByDate(ctx context.Context, userID, date string) (models.CheckIn, error) {
	var c models.CheckIn
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return models.CheckIn{}, ErrNotFound
	}
	if err != nil {
		return models.CheckIn{}, err
	}
	return c, nil
}

// List returns a user's check-ins with date >= since, oldest first.
// An empty since returns the full history.
func (s *Store) List(ctx context.Context, userID, since string) ([]models.CheckIn, error) {
	filter := bson.M{"user_id": userID}
	if since != "" {
		filter["date"] = bson.M{"$gte": since}
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return s.find(ctx, filter, opts)
}

// ListAll returns a user's full history, oldest first.
func (s *Store) ListAll(ctx context.Context, userID string) ([]models.CheckIn, error) {
	return s.List(ctx, userID, "")
}

// Recent returns up to limit of a user's latest check-ins, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int64) ([]models.CheckIn, error) {
	if limit <= 0 {
		limit = models.DefaultRecentLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(limit)
	return s.find(ctx, bson.M{"user_id": userID}, opts)
}

// Delete removes the check-in for a user on a date.
// Returns false if there was nothing to delete.
func (s *Store) Delete(ctx context.Context, userID, date string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "date": date})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteAll removes every check-in for a user and returns how many were
// deleted.
func (s *Store) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns how many check-ins a user has.
func (s *Store) Count(ctx context.Context, userID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}

// UsersUpdatedSince returns the distinct user IDs with a check-in written at
// or after since.
func (s *Store) UsersUpdatedSince(ctx context.Context, since time.Time) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "user_id", bson.M{"updated_at": bson.M{"$gte": since}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.CheckIn, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CheckIn{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
