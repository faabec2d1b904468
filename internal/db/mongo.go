package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/pkg/logger"
)

// MongoDB holds the client and the application database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to the configured MongoDB deployment
func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	timeout, err := time.ParseDuration(cfg.Database.Mongo.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongo connect timeout: %w", err)
	}
	return NewMongoDBFromURI(cfg.Database.Mongo.URI, cfg.Database.Mongo.Database, timeout)
}

// NewMongoDBFromURI connects to uri and selects database name
func NewMongoDBFromURI(uri, name string, timeout time.Duration) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to establish mongo connection: %w", err)
	}

	logger.Info().Str("database", name).Msg("MongoDB connection established")
	return &MongoDB{Client: client, Database: client.Database(name)}, nil
}

// Close disconnects the client
func (db *MongoDB) Close() {
	if db.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
	}
}
