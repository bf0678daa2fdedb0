package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// NewMongo connects to MongoDB and returns a handle to the named database
// along with a disconnect function. The handle is constructed once at boot
// and passed to every component needing persistence.
func NewMongo(ctx context.Context, uri, name string) (*mongo.Database, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), connectTimeout)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	cleanup := func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), connectTimeout)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
	}

	return client.Database(name), cleanup, nil
}
