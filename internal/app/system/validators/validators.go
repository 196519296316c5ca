// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stratawell/internal/app/store/apistats"
	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// collections lists every collection the service writes, with its JSON-Schema
// validator. A nil schema means the collection is only created.
func collections() []struct {
	name   string
	schema bson.M
} {
	return []struct {
		name   string
		schema bson.M
	}{
		{checkinstore.CollectionName, checkinsSchema()},
		{profilestore.CollectionName, profilesSchema()},
		{snapshotstore.CollectionName, nil},
		{apistats.CollectionName, nil},
		{ledgerstore.CollectionName, nil},
	}
}

// EnsureAll creates missing collections and attaches validators. Servers
// without collMod validator support (some DocumentDB versions) skip the
// validator with an info log.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := collectionNames(ctx, db)
	if err != nil {
		// Fall through: CreateCollection reports NamespaceExists anyway.
		zap.L().Warn("listing collections failed", zap.Error(err))
		existing = map[string]bool{}
	}

	var problems []string
	for _, c := range collections() {
		if err := createIfMissing(ctx, db, c.name, existing); err != nil {
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		if c.schema == nil {
			continue
		}
		err := setValidator(ctx, db, c.name, c.schema)
		switch {
		case err == nil:
		case unsupported(err):
			zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
		default:
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func collectionNames(ctx context.Context, db *mongo.Database) (map[string]bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

func createIfMissing(ctx context.Context, db *mongo.Database, name string, existing map[string]bool) error {
	if existing[name] {
		return nil
	}
	err := db.CreateCollection(ctx, name)
	if err != nil && !commandFailed(err, []int32{48}, "already exists", "namespace exists") {
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	if err == nil {
		zap.L().Info("created collection", zap.String("collection", name))
	}
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Debug("validator ensured", zap.String("collection", name))
	return nil
}

// unsupported matches NoSuchCommand (59) and NotImplemented (115).
func unsupported(err error) bool {
	return commandFailed(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

// commandFailed reports whether err carries one of codes or, case-insensitively,
// one of phrases.
func commandFailed(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

const datePattern = "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"

// optionalInt matches a nullable integer within [min, max].
func optionalInt(min, max int) bson.M {
	return bson.M{"bsonType": bson.A{"int", "long", "null"}, "minimum": min, "maximum": max}
}

func checkinsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "date"},
			"properties": bson.M{
				"user_id":           bson.M{"bsonType": "string", "minLength": 1},
				"date":              bson.M{"bsonType": "string", "pattern": datePattern},
				"mood_score":        optionalInt(models.MinScore, models.MaxScore),
				"energy_score":      optionalInt(models.MinScore, models.MaxScore),
				"appetite":          optionalInt(models.MinAppetite, models.MaxAppetite),
				"bloating_severity": optionalInt(models.MinSeverity, models.MaxSeverity),
				"flow_level":        optionalInt(models.MinSeverity, models.MaxSeverity),
				"exercise_minutes":  optionalInt(0, models.MaxExerciseMinutes),
				"sleep_hours": bson.M{
					"bsonType": bson.A{"double", "int", "long", "null"},
					"minimum":  models.MinSleepHours,
					"maximum":  models.MaxSleepHours,
				},
				"bloating":     bson.M{"bsonType": "bool"},
				"exercised":    bson.M{"bsonType": "bool"},
				"period":       bson.M{"bsonType": "bool"},
				"period_start": bson.M{"bsonType": "bool"},
				"sick":         bson.M{"bsonType": "bool"},
			},
		},
	}
}

func profilesSchema() bson.M {
	features := bson.A{}
	for _, f := range models.AllFeatureValues() {
		features = append(features, f)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "timezone"},
			"properties": bson.M{
				"user_id":       bson.M{"bsonType": "string", "minLength": 1},
				"timezone":      bson.M{"bsonType": "string", "minLength": 1},
				"reminder_time": bson.M{"bsonType": bson.A{"string", "null"}, "pattern": "^[0-2][0-9]:[0-5][0-9]$"},
				"tracked_features": bson.M{
					"bsonType": "array",
					"items":    bson.M{"enum": features},
				},
			},
		},
	}
}
