// Package txn runs multi-collection writes in a MongoDB transaction when the
// deployment supports one.
//
// A standalone mongod (the usual local setup) has no transactions. There the
// function runs once without a session and each write stands alone.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func is the unit of work. ctx is a mongo.SessionContext inside a
// transaction and the caller's context otherwise; every write must use it.
// It may run more than once when the driver retries a transient error.
type Func func(ctx context.Context) error

// Run executes fn inside a transaction on db's client, falling back to a
// plain call when sessions or transactions are unavailable. log may be nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		warn(log, "mongo session unavailable, writing without a transaction", err)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warn(log, "transactions not supported, writing without a transaction", err)
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions: a standalone server, or DocumentDB with
// transactions off.
//
// Server codes: 20 (IllegalOperation on a non-replica-set member),
// 51 and 263 (operation not allowed in a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// DocumentDB and older servers only say so in the message. Two hits
	// are required so an unrelated "session" error is not swallowed.
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}

func warn(log *zap.Logger, msg string, err error) {
	if log != nil {
		log.Warn(msg, zap.Error(err))
	}
}
