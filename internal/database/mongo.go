package database

import (
	"context"
	"fmt"

	"github.com/nourishtogether/donation-api/internal/config"
	"github.com/nourishtogether/donation-api/internal/constants"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo dials cfg.MongoURI and verifies the connection with a ping.
// The database name is cfg.Name.
func ConnectMongo(ctx context.Context, cfg config.DBConfig) (*mongo.Client, *mongo.Database, error) {
	uri, err := cfg.ResolveDSN()
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, client.Database(cfg.Name), nil
}
