// internal/app/system/txn/txn.go

// Package txn wraps MongoDB multi-document transactions. Transactions need a
// replica set (or mongos); standalone servers and some DocumentDB versions
// reject session/transaction commands, which IsNotSupported detects so
// callers can fall back to single-document conditional writes.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// WithTransaction runs fn inside a MongoDB transaction with majority
// read/write concerns. fn receives a session context; every read and write
// inside fn must use it, or it will not be part of the transaction. The
// driver retries fn on transient transaction errors; errors returned by fn
// itself are surfaced unchanged.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	}, opts)
	return err
}

// Mongo error codes returned when the deployment can't run transactions.
// 20: IllegalOperation (transaction numbers need a replica set member),
// 51: no such command / illegal operation on older servers,
// 263: OperationNotSupportedInTransaction.
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions at all (as opposed to a transaction that
// failed and should be retried or surfaced).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if notSupportedCodes[cmdErr.Code] {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}
