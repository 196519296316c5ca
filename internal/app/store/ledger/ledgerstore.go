// internal/app/store/ledger/ledgerstore.go
package ledgerstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/stratawell/internal/app/store/storeutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for request ledger entries.
const CollectionName = "ledger_entries"

// ErrNotFound is returned when no entry matches a request ID.
var ErrNotFound = errors.New("ledger entry not found")

// Entry records one API request.
type Entry struct {
	ID primitive.ObjectID `bson:"_id" json:"-"`

	RequestID       string `bson:"request_id" json:"request_id"`
	ClientRequestID string `bson:"client_request_id,omitempty" json:"client_request_id,omitempty"` // X-Request-ID sent by the caller

	Method   string            `bson:"method" json:"method"`
	Path     string            `bson:"path" json:"path"`
	Query    string            `bson:"query,omitempty" json:"query,omitempty"`
	Headers  map[string]string `bson:"headers,omitempty" json:"headers,omitempty"` // sensitive values redacted
	RemoteIP string            `bson:"remote_ip" json:"remote_ip"`

	ActorType string `bson:"actor_type" json:"actor_type"` // "api_key" or "anonymous"

	RequestBodySize    int64  `bson:"request_body_size" json:"request_body_size"`
	RequestBodyHash    string `bson:"request_body_hash,omitempty" json:"request_body_hash,omitempty"`
	RequestBodyPreview string `bson:"request_body_preview,omitempty" json:"request_body_preview,omitempty"`
	RequestContentType string `bson:"request_content_type,omitempty" json:"request_content_type,omitempty"`

	StatusCode   int    `bson:"status_code" json:"status_code"`
	ResponseSize int64  `bson:"response_size" json:"response_size"`
	ErrorClass   string `bson:"error_class,omitempty" json:"error_class,omitempty"` // validation, auth, not_found, internal
	ErrorMessage string `bson:"error_message,omitempty" json:"error_message,omitempty"`

	Timing TimingInfo `bson:"timing" json:"timing"`

	StartedAt   time.Time `bson:"started_at" json:"started_at"`
	CompletedAt time.Time `bson:"completed_at" json:"completed_at"`

	Metadata map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// TimingInfo breaks down where a request spent its time.
type TimingInfo struct {
	DecodeMs    float64 `bson:"decode_ms,omitempty" json:"decode_ms,omitempty"`
	DBQueryMs   float64 `bson:"db_query_ms,omitempty" json:"db_query_ms,omitempty"`
	AnalyticsMs float64 `bson:"analytics_ms,omitempty" json:"analytics_ms,omitempty"`
	TotalMs     float64 `bson:"total_ms" json:"total_ms"`
}

// Store provides ledger entry persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new ledger store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a new ledger entry.
func (s *Store) Create(ctx context.Context, entry Entry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// GetByRequestID returns the entry for a request ID.
func (s *Store) GetByRequestID(ctx context.Context, requestID string) (Entry, error) {
	var entry Entry
	err := s.c.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Since      time.Time
	PathPrefix string
	MinStatus  int
	ErrorClass string
}

// ListResult is one page of entries, newest first.
type ListResult struct {
	Entries    []Entry `json:"entries"`
	TotalCount int64   `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

// List returns one page of entries matching filter.
func (s *Store) List(ctx context.Context, filter ListFilter, page, pageSize int) (ListResult, error) {
	pg := storeutil.NewPage(page, pageSize, 50, 200)

	query := filter.query()
	total, err := s.c.CountDocuments(ctx, query)
	if err != nil {
		return ListResult{}, err
	}

	opts := pg.FindOptions().SetSort(bson.D{{Key: "started_at", Value: -1}})
	entries, err := s.find(ctx, query, opts)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Entries:    entries,
		TotalCount: total,
		Page:       pg.Number,
		PageSize:   pg.Size,
		TotalPages: pg.TotalPages(total),
	}, nil
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if !f.Since.IsZero() {
		q["started_at"] = bson.M{"$gte": f.Since}
	}
	if f.PathPrefix != "" {
		q["path"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.PathPrefix)}
	}
	if f.MinStatus > 0 {
		q["status_code"] = bson.M{"$gte": f.MinStatus}
	}
	if f.ErrorClass != "" {
		q["error_class"] = f.ErrorClass
	}
	return q
}

// DeleteOlderThan removes entries that started before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"started_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByStatus counts entries between start and end by status class
// ("2xx", "4xx", ...).
func (s *Store) CountByStatus(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"started_at": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"$switch": bson.M{
					"branches": []bson.M{
						{"case": bson.M{"$lt": []any{"$status_code", 200}}, "then": "1xx"},
						{"case": bson.M{"$lt": []any{"$status_code", 300}}, "then": "2xx"},
						{"case": bson.M{"$lt": []any{"$status_code", 400}}, "then": "3xx"},
						{"case": bson.M{"$lt": []any{"$status_code", 500}}, "then": "4xx"},
					},
					"default": "5xx",
				},
			},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out[doc.ID] = doc.Count
	}
	return out, cur.Err()
}

// AverageResponseTime returns the mean total_ms of entries between start and end.
func (s *Store) AverageResponseTime(ctx context.Context, start, end time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"started_at": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"avg_time": bson.M{"$avg": "$timing.total_ms"},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		return 0, cur.Err()
	}
	var doc struct {
		AvgTime float64 `bson:"avg_time"`
	}
	if err := cur.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.AvgTime, nil
}

// RecentErrors returns the newest entries with status >= 400.
// limit is clamped to [1, 100] with 10 as the default.
func (s *Store) RecentErrors(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, bson.M{"status_code": bson.M{"$gte": 400}}, opts)
}

func (s *Store) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Entry, error) {
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
