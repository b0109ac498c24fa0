package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and lookup indexes the services rely on.
// Uniqueness of emails and usernames is enforced here as well as in code.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "firebase_uid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		CollectionPages: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		CollectionBlocks:    {{Keys: bson.D{{Key: "page_id", Value: 1}, {Key: "order", Value: 1}}}},
		CollectionEvents:    {{Keys: bson.D{{Key: "page_id", Value: 1}}}},
		CollectionShowcases: {{Keys: bson.D{{Key: "page_id", Value: 1}}}},
		CollectionVerifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "req_type", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "campaign_id", Value: 1}, {Key: "read", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
