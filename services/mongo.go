package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flowstate-server/utils/errors"
)

// ConnectMongo dials MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// withTimeout bounds a store call so no operation blocks indefinitely.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// storeErr maps driver failures onto the API error taxonomy. Missing
// documents become NotFound; everything else, timeouts included, surfaces
// as StoreUnavailable rather than being swallowed.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*errors.APIError); ok {
		return apiErr
	}
	if err == mongo.ErrNoDocuments {
		return errors.ErrNotFound
	}
	return errors.Wrap(err, "STORE_UNAVAILABLE", "Storage backend unavailable", errors.ErrStoreUnavailable.Status)
}
