package repositories

import (
	"context"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	GetByRecipientID(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	CountReadByCampaignID(ctx context.Context, campaignID string) (int64, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type MongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection(CollectionNotifications)}
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	_, err := r.collection.InsertOne(ctx, notification)
	return mapError(err)
}

func (r *MongoNotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]any, len(notifications))
	for i := range notifications {
		docs[i] = notifications[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return mapError(err)
}

func (r *MongoNotificationRepository) GetByRecipientID(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

func (r *MongoNotificationRepository) CountReadByCampaignID(ctx context.Context, campaignID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"campaign_id": campaignID, "read": true})
}

func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"user_id": userID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	return err
}

func (r *MongoNotificationRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
