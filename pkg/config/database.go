package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB holds the MongoDB connection and the application database.
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	logger   *slog.Logger
}

// InitMongo connects to uri and verifies the connection with a ping.
func InitMongo(ctx context.Context, uri, database string, logger *slog.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB!", "database", database)
	return &DB{Mongo: client, Database: client.Database(database), logger: logger}, nil
}

// Close disconnects the MongoDB client.
func (db *DB) Close() {
	if db == nil || db.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Mongo.Disconnect(ctx); err != nil {
		db.logger.Error("Error closing MongoDB connection", "error", err)
		return
	}
	db.logger.Info("MongoDB connection closed.")
}

// Ping checks the primary is reachable; the health endpoint reports it.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.Mongo.Ping(ctx, nil)
}
