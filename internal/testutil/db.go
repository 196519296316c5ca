// Package testutil sets up per-test MongoDB databases and HTTP fixtures.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratawell/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultMongoURI is used unless STRATAWELL_TEST_MONGO_URI is set.
	DefaultMongoURI = "mongodb://localhost:27017"
	// DBPrefix starts every test database name.
	DBPrefix = "stratawell_test_"
)

var shared = struct {
	once   sync.Once
	client *mongo.Client
	err    error
}{}

func mongoURI() string {
	if uri := os.Getenv("STRATAWELL_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return DefaultMongoURI
}

// sharedClient connects once per test binary. The pool is sized for
// parallel tests across packages.
func sharedClient() (*mongo.Client, error) {
	shared.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(200).
			SetMinPoolSize(10).
			SetMaxConnIdleTime(30 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		if shared.client, shared.err = mongo.Connect(ctx, opts); shared.err == nil {
			shared.err = shared.client.Ping(ctx, nil)
		}
	})
	return shared.client, shared.err
}

// SetupTestDB returns an empty database private to t, with production indexes
// in place. It is dropped when t finishes.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := sharedClient()
	if err != nil {
		t.Fatalf("connect test MongoDB at %s: %v", mongoURI(), err)
	}
	db := client.Database(DatabaseName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s on cleanup: %v", db.Name(), err)
		}
	})
	return db
}

var unsafeDBChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// DatabaseName maps a test name to a database name within MongoDB's 63-byte
// limit. Long names are cut and suffixed with a hash of the full name so
// subtests sharing a prefix stay distinct.
func DatabaseName(testName string) string {
	const maxLen = 63
	name := DBPrefix + unsafeDBChars.ReplaceAllString(testName, "_")
	if len(name) <= maxLen {
		return name
	}
	sum := sha1.Sum([]byte(testName))
	tag := hex.EncodeToString(sum[:])[:10]
	return name[:maxLen-len(tag)-1] + "_" + tag
}

// TestContext bounds a test's database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
