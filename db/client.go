// Package db wraps connection management for the MongoDB instance under test.
package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ServerSelectionTimeout bounds how long the driver waits for a reachable
// server before a connection attempt is considered failed.
const ServerSelectionTimeout = 5 * time.Second

// Connect establishes a client against uri and verifies reachability with a
// ping. Callers own the returned client and must Disconnect it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	return ConnectWithTimeout(ctx, uri, ServerSelectionTimeout)
}

// ConnectWithTimeout is Connect with an explicit server-selection timeout,
// used by checks that probe deliberately unreachable endpoints.
func ConnectWithTimeout(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping")
	}
	return client, nil
}

// Ping verifies the target at uri is reachable, then tears the client down.
// The runner uses this as its environment precondition.
func Ping(ctx context.Context, uri string) error {
	client, err := Connect(ctx, uri)
	if err != nil {
		return err
	}
	return client.Disconnect(ctx)
}

// DropCollections drops the named collections from database if they exist.
// Suites call this before running so every invocation starts from a clean
// scratch area.
func DropCollections(ctx context.Context, database *mongo.Database, names ...string) error {
	existing, err := database.ListCollectionNames(ctx, map[string]interface{}{})
	if err != nil {
		return errors.Wrap(err, "list collections")
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}
	for _, name := range names {
		if !present[name] {
			continue
		}
		if err := database.Collection(name).Drop(ctx); err != nil {
			return errors.Wrapf(err, "drop collection %s", name)
		}
	}
	return nil
}
