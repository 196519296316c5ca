// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// indexDef is one wanted index.
type indexDef struct {
	name   string
	keys   bson.D
	unique bool
	sparse bool
}

func (s indexDef) model() mongo.IndexModel {
	opts := options.Index().SetName(s.name)
	if s.unique {
		opts.SetUnique(true)
	}
	if s.sparse {
		opts.SetSparse(true)
	}
	return mongo.IndexModel{Keys: s.keys, Options: opts}
}

func asc(field string) bson.E  { return bson.E{Key: field, Value: 1} }
func desc(field string) bson.E { return bson.E{Key: field, Value: -1} }

// wanted lists the indexes per collection. Collection names must match the
// store packages; they are literals here because the stores' tests import
// this package through testutil.
var wanted = []struct {
	collection string
	defs       []indexDef
}{
	{"checkins", []indexDef{
		// One check-in per user per day; also serves date-range scans.
		{name: "uniq_checkins_user_date", keys: bson.D{asc("user_id"), asc("date")}, unique: true},
		// Snapshot job: users with recent changes.
		{name: "idx_checkins_updated_user", keys: bson.D{desc("updated_at"), asc("user_id")}},
	}},
	{"profiles", []indexDef{
		{name: "uniq_profiles_user", keys: bson.D{asc("user_id")}, unique: true},
	}},
	{"insight_snapshots", []indexDef{
		{name: "uniq_snapshots_user", keys: bson.D{asc("user_id")}, unique: true},
		{name: "idx_snapshots_computed", keys: bson.D{desc("computed_at")}},
	}},
	{"api_stats", []indexDef{
		// Upsert key for Record.
		{name: "uniq_api_stats_bucket", keys: bson.D{asc("bucket"), asc("stat_type"), asc("bucket_duration")}, unique: true},
		{name: "idx_api_stats_type_bucket", keys: bson.D{asc("stat_type"), asc("bucket")}},
	}},
	{"ledger_entries", []indexDef{
		// Retention and time-ordered listing.
		{name: "idx_ledger_started", keys: bson.D{desc("started_at")}},
		{name: "uniq_ledger_request_id", keys: bson.D{asc("request_id")}, unique: true},
		{name: "idx_ledger_path", keys: bson.D{asc("path"), desc("started_at")}},
		{name: "idx_ledger_status", keys: bson.D{asc("status_code"), desc("started_at")}},
		{name: "idx_ledger_error_class", keys: bson.D{asc("error_class"), desc("started_at")}, sparse: true},
	}},
}

// EnsureAll creates or repairs every index at startup. It is idempotent.
// Problems are collected across collections so one run reports all of them.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, w := range wanted {
		coll := db.Collection(w.collection)
		for _, s := range w.defs {
			if err := reconcile(ctx, coll, s); err != nil {
				problems = append(problems, fmt.Sprintf("%s(%s): %v", w.collection, s.name, err))
			}
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

// keySig renders a key pattern so indexes can be matched by keys, not name.
func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// reconcile makes coll carry s. An index with the same keys and uniqueness
// is reused whatever its name; one with the same keys but different
// uniqueness is dropped and rebuilt.
func reconcile(ctx context.Context, coll *mongo.Collection, s indexDef) error {
	start := time.Now()
	sig := keySig(s.keys)
	log := zap.L().With(
		zap.String("collection", coll.Name()),
		zap.String("name", s.name),
		zap.String("keys", sig),
		zap.Bool("unique", s.unique))

	if ex, ok := findByKeys(ctx, coll, sig); ok {
		if ex.Unique == s.unique {
			log.Debug("index present", zap.String("existing_name", ex.Name))
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("drop %s: %w", ex.Name, err)
		}
		log.Info("dropped index to change uniqueness", zap.String("existing_name", ex.Name))
	}

	if _, err := coll.Indexes().CreateOne(ctx, s.model()); err != nil {
		if s.unique && isDuplicateKeyErr(err) {
			return errors.New("cannot create unique index: duplicate documents present")
		}
		log.Warn("index create failed", zap.Error(err))
		return err
	}
	log.Info("index ensured", zap.Duration("took", time.Since(start)))
	return nil
}

// findByKeys returns the index on coll whose key pattern renders as sig.
// A listing failure reports no match and CreateOne surfaces the real error.
func findByKeys(ctx context.Context, coll *mongo.Collection, sig string) (existingIndex, bool) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existingIndex{}, false
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if keySig(idx.Key) == sig {
			return idx, true
		}
	}
	return existingIndex{}, false
}

// isDuplicateKeyErr matches E11000 from the driver error types or the message.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
