// Package apistats stores per-endpoint request counters in fixed time buckets.
package apistats

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for API statistics.
const CollectionName = "api_stats"

// StatType identifies the API endpoint being tracked.
type StatType string

const (
	StatTypeCheckinSave   StatType = "checkin_save"
	StatTypeCheckinLoad   StatType = "checkin_load"
	StatTypeCheckinList   StatType = "checkin_list"
	StatTypeCheckinRecent StatType = "checkin_recent"
	StatTypeCheckinDelete StatType = "checkin_delete"
	StatTypeCheckinExport StatType = "checkin_export"

	StatTypeSummary      StatType = "analytics_summary"
	StatTypeCorrelations StatType = "analytics_correlations"
	StatTypeStreaks      StatType = "analytics_streaks"
	StatTypeTrends       StatType = "analytics_trends"
	StatTypeCycle        StatType = "analytics_cycle"
	StatTypeSnapshot     StatType = "analytics_snapshot"

	StatTypeProfileSave   StatType = "profile_save"
	StatTypeProfileLoad   StatType = "profile_load"
	StatTypeProfileDelete StatType = "profile_delete"
)

// Bucket is one time bucket of counters for a stat type.
type Bucket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Bucket         time.Time          `bson:"bucket"`          // bucket start, UTC
	BucketDuration string             `bson:"bucket_duration"` // e.g. "1h"
	StatType       StatType           `bson:"stat_type"`
	Requests       int64              `bson:"requests"`
	Errors         int64              `bson:"errors"` // 4xx and 5xx
	TotalMs        int64              `bson:"total_ms"`
	MinMs          int64              `bson:"min_ms"`
	MaxMs          int64              `bson:"max_ms"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// AvgMs returns the average response time in milliseconds.
func (b *Bucket) AvgMs() float64 {
	if b.Requests == 0 {
		return 0
	}
	return float64(b.TotalMs) / float64(b.Requests)
}

// Store provides API statistics persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new API stats store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// TruncateToBucket returns the start of the bucket containing t.
func TruncateToBucket(t time.Time, d time.Duration) time.Time {
	return t.UTC().Truncate(d)
}

// Record adds one request to the current bucket for statType, creating the
// bucket if needed.
func (s *Store) Record(ctx context.Context, statType StatType, bucketDuration time.Duration, durationMs int64, isError bool) error {
	now := time.Now().UTC()
	bucket := TruncateToBucket(now, bucketDuration)
	durationStr := bucketDuration.String()

	inc := bson.M{
		"requests": 1,
		"total_ms": durationMs,
	}
	if isError {
		inc["errors"] = 1
	}

	// $min/$max also initialize the fields on insert, so they stay out of
	// $setOnInsert.
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"bucket":          bucket,
			"bucket_duration": durationStr,
			"stat_type":       statType,
		},
		"$min": bson.M{"min_ms": durationMs},
		"$max": bson.M{"max_ms": durationMs},
	}

	_, err := s.c.UpdateOne(ctx, bson.M{
		"bucket":          bucket,
		"stat_type":       statType,
		"bucket_duration": durationStr,
	}, update, options.Update().SetUpsert(true))
	return err
}

// GetRange returns the buckets for statType between start and end, oldest
// first. An empty bucketDuration matches every resolution.
func (s *Store) GetRange(ctx context.Context, statType StatType, start, end time.Time, bucketDuration string) ([]Bucket, error) {
	filter := bson.M{
		"stat_type": statType,
		"bucket":    bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
	}
	if bucketDuration != "" {
		filter["bucket_duration"] = bucketDuration
	}

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var buckets []Bucket
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// DeleteOlderThan removes buckets that started before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"bucket": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Summary totals one stat type over a time range.
type Summary struct {
	StatType      StatType  `json:"stat_type"`
	TotalRequests int64     `json:"total_requests"`
	TotalErrors   int64     `json:"total_errors"`
	AvgMs         float64   `json:"avg_ms"`
	MinMs         int64     `json:"min_ms"`
	MaxMs         int64     `json:"max_ms"`
	FirstBucket   time.Time `json:"first_bucket"`
	LastBucket    time.Time `json:"last_bucket"`
}

// ErrorRate returns the share of failed requests as a percentage.
func (s Summary) ErrorRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.TotalErrors) / float64(s.TotalRequests) * 100
}

// GetSummary totals every stat type with buckets between start and end,
// sorted by stat type.
func (s *Store) GetSummary(ctx context.Context, start, end time.Time) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"bucket": bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$stat_type",
			"requests":     bson.M{"$sum": "$requests"},
			"errors":       bson.M{"$sum": "$errors"},
			"total_ms":     bson.M{"$sum": "$total_ms"},
			"min_ms":       bson.M{"$min": "$min_ms"},
			"max_ms":       bson.M{"$max": "$max_ms"},
			"first_bucket": bson.M{"$min": "$bucket"},
			"last_bucket":  bson.M{"$max": "$bucket"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	summaries := []Summary{}
	for cur.Next(ctx) {
		var doc struct {
			ID          string    `bson:"_id"`
			Requests    int64     `bson:"requests"`
			Errors      int64     `bson:"errors"`
			TotalMs     int64     `bson:"total_ms"`
			MinMs       int64     `bson:"min_ms"`
			MaxMs       int64     `bson:"max_ms"`
			FirstBucket time.Time `bson:"first_bucket"`
			LastBucket  time.Time `bson:"last_bucket"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}

		var avg float64
		if doc.Requests > 0 {
			avg = float64(doc.TotalMs) / float64(doc.Requests)
		}
		summaries = append(summaries, Summary{
			StatType:      StatType(doc.ID),
			TotalRequests: doc.Requests,
			TotalErrors:   doc.Errors,
			AvgMs:         avg,
			MinMs:         doc.MinMs,
			MaxMs:         doc.MaxMs,
			FirstBucket:   doc.FirstBucket,
			LastBucket:    doc.LastBucket,
		})
	}
	return summaries, cur.Err()
}
