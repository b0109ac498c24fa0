package repositories

import (
	"context"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageRepository defines the interface for page data operations
type PageRepository interface {
	CreatePage(ctx context.Context, page *models.Page) error
	GetPageByID(ctx context.Context, id string) (*models.Page, error)
	// GetOwnedPage matches id and owner in one filter, so a foreign page is
	// indistinguishable from a missing one.
	GetOwnedPage(ctx context.Context, id, userID string) (*models.Page, error)
	GetPageByUsername(ctx context.Context, username string) (*models.Page, error)
	GetPagesByUserID(ctx context.Context, userID string) ([]models.Page, error)
	CountPagesByUserID(ctx context.Context, userID string) (int64, error)
	HasVerifiedPage(ctx context.Context, userID string) (bool, error)
	SetMainPage(ctx context.Context, id string, isMain bool) error
	SetUsername(ctx context.Context, id, username string) error
	UpdateAttributes(ctx context.Context, id string, attrs models.PageAttributes) error
	SetVerification(ctx context.Context, id string, v models.PageVerification) error
	DeletePage(ctx context.Context, id string) error
}

// MongoPageRepository implements PageRepository for MongoDB
type MongoPageRepository struct {
	collection *mongo.Collection
}

// NewMongoPageRepository creates a new MongoPageRepository
func NewMongoPageRepository(db *mongo.Database) *MongoPageRepository {
	return &MongoPageRepository{collection: db.Collection(CollectionPages)}
}

func (r *MongoPageRepository) CreatePage(ctx context.Context, page *models.Page) error {
	_, err := r.collection.InsertOne(ctx, page)
	return mapError(err)
}

func (r *MongoPageRepository) GetPageByID(ctx context.Context, id string) (*models.Page, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoPageRepository) GetOwnedPage(ctx context.Context, id, userID string) (*models.Page, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": userID})
}

func (r *MongoPageRepository) GetPageByUsername(ctx context.Context, username string) (*models.Page, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoPageRepository) findOne(ctx context.Context, filter bson.M) (*models.Page, error) {
	var page models.Page
	if err := r.collection.FindOne(ctx, filter).Decode(&page); err != nil {
		return nil, mapError(err)
	}
	return &page, nil
}

// GetPagesByUserID returns the user's pages oldest first
func (r *MongoPageRepository) GetPagesByUserID(ctx context.Context, userID string) ([]models.Page, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pages := []models.Page{}
	if err = cursor.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *MongoPageRepository) CountPagesByUserID(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

func (r *MongoPageRepository) HasVerifiedPage(ctx context.Context, userID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_verified": true}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoPageRepository) SetMainPage(ctx context.Context, id string, isMain bool) error {
	return r.set(ctx, id, bson.M{"is_main_page": isMain})
}

func (r *MongoPageRepository) SetUsername(ctx context.Context, id, username string) error {
	return r.set(ctx, id, bson.M{"username": username})
}

func (r *MongoPageRepository) UpdateAttributes(ctx context.Context, id string, attrs models.PageAttributes) error {
	fields := bson.M{}
	if attrs.Name != nil {
		fields["name"] = *attrs.Name
	}
	if attrs.Bio != nil {
		fields["bio"] = *attrs.Bio
	}
	if attrs.Avatar != nil {
		fields["avatar"] = *attrs.Avatar
	}
	if attrs.Cover != nil {
		fields["cover"] = *attrs.Cover
	}
	if attrs.Theme != nil {
		fields["theme"] = *attrs.Theme
	}
	if attrs.SEO != nil {
		fields["seo"] = *attrs.SEO
	}
	if len(fields) == 0 {
		return nil
	}
	return r.set(ctx, id, fields)
}

func (r *MongoPageRepository) SetVerification(ctx context.Context, id string, v models.PageVerification) error {
	fields := bson.M{}
	if v.IsVerified != nil {
		fields["is_verified"] = *v.IsVerified
	}
	if v.IsBrand != nil {
		fields["is_brand"] = *v.IsBrand
	}
	if v.BrandStatus != nil {
		fields["brand_status"] = *v.BrandStatus
	}
	if len(fields) == 0 {
		return nil
	}
	return r.set(ctx, id, fields)
}

func (r *MongoPageRepository) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPageRepository) DeletePage(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
