package repositories

import (
	"context"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReservedUsernameRepository interface {
	IsReserved(ctx context.Context, username string) (bool, error)
	Reserve(ctx context.Context, entry *models.ReservedUsername) error
	Release(ctx context.Context, username string) error
	ListReserved(ctx context.Context) ([]models.ReservedUsername, error)
}

type MongoReservedUsernameRepository struct {
	collection *mongo.Collection
}

func NewMongoReservedUsernameRepository(db *mongo.Database) *MongoReservedUsernameRepository {
	return &MongoReservedUsernameRepository{collection: db.Collection(CollectionReserved)}
}

func (r *MongoReservedUsernameRepository) IsReserved(ctx context.Context, username string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": username}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoReservedUsernameRepository) Reserve(ctx context.Context, entry *models.ReservedUsername) error {
	_, err := r.collection.InsertOne(ctx, entry)
	return mapError(err)
}

func (r *MongoReservedUsernameRepository) Release(ctx context.Context, username string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoReservedUsernameRepository) ListReserved(ctx context.Context) ([]models.ReservedUsername, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.ReservedUsername{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
