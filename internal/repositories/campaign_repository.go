package repositories

import (
	"context"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CampaignRepository interface {
	CreateCampaign(ctx context.Context, campaign *models.NotificationCampaign) error
	GetCampaignByID(ctx context.Context, id string) (*models.NotificationCampaign, error)
	ListCampaigns(ctx context.Context, limit int64) ([]models.NotificationCampaign, error)
}

type MongoCampaignRepository struct {
	collection *mongo.Collection
}

func NewMongoCampaignRepository(db *mongo.Database) *MongoCampaignRepository {
	return &MongoCampaignRepository{collection: db.Collection(CollectionCampaigns)}
}

func (r *MongoCampaignRepository) CreateCampaign(ctx context.Context, campaign *models.NotificationCampaign) error {
	_, err := r.collection.InsertOne(ctx, campaign)
	return mapError(err)
}

func (r *MongoCampaignRepository) GetCampaignByID(ctx context.Context, id string) (*models.NotificationCampaign, error) {
	var campaign models.NotificationCampaign
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign); err != nil {
		return nil, mapError(err)
	}
	return &campaign, nil
}

// ListCampaigns omits the recipient lists, which can be as large as the user base.
func (r *MongoCampaignRepository) ListCampaigns(ctx context.Context, limit int64) ([]models.NotificationCampaign, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"recipient_ids": 0})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	campaigns := []models.NotificationCampaign{}
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}
