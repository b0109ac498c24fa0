package repositories

import (
	"context"
	"time"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VerificationRepository defines the interface for verification ticket operations
type VerificationRepository interface {
	CreateRequest(ctx context.Context, req *models.VerificationRequest) error
	GetRequestByID(ctx context.Context, id string) (*models.VerificationRequest, error)
	// FindPending returns the pending ticket for (user, type, page), if any.
	FindPending(ctx context.Context, userID string, reqType models.RequestType, pageID string) (*models.VerificationRequest, error)
	ListRequests(ctx context.Context, status *models.RequestStatus, limit int64) ([]models.VerificationRequest, error)
	ListRequestsByUserID(ctx context.Context, userID string) ([]models.VerificationRequest, error)
	SetStatus(ctx context.Context, id string, status models.RequestStatus, reason string, at time.Time) error
	// CancelApprovedBrand moves every approved brand ticket of the user to cancelled.
	CancelApprovedBrand(ctx context.Context, userID, reason string, at time.Time) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type MongoVerificationRepository struct {
	collection *mongo.Collection
}

func NewMongoVerificationRepository(db *mongo.Database) *MongoVerificationRepository {
	return &MongoVerificationRepository{collection: db.Collection(CollectionVerifications)}
}

func (r *MongoVerificationRepository) CreateRequest(ctx context.Context, req *models.VerificationRequest) error {
	_, err := r.collection.InsertOne(ctx, req)
	return mapError(err)
}

func (r *MongoVerificationRepository) GetRequestByID(ctx context.Context, id string) (*models.VerificationRequest, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoVerificationRepository) FindPending(ctx context.Context, userID string, reqType models.RequestType, pageID string) (*models.VerificationRequest, error) {
	return r.findOne(ctx, bson.M{
		"user_id":  userID,
		"req_type": reqType,
		"page_id":  pageID,
		"status":   models.RequestPending,
	})
}

func (r *MongoVerificationRepository) findOne(ctx context.Context, filter bson.M) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	if err := r.collection.FindOne(ctx, filter).Decode(&req); err != nil {
		return nil, mapError(err)
	}
	return &req, nil
}

// ListRequests returns the newest tickets first, optionally filtered by status
func (r *MongoVerificationRepository) ListRequests(ctx context.Context, status *models.RequestStatus, limit int64) ([]models.VerificationRequest, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *MongoVerificationRepository) ListRequestsByUserID(ctx context.Context, userID string) ([]models.VerificationRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *MongoVerificationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.VerificationRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reqs := []models.VerificationRequest{}
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *MongoVerificationRepository) SetStatus(ctx context.Context, id string, status models.RequestStatus, reason string, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":           status,
		"rejection_reason": reason,
		"updated_at":       at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoVerificationRepository) CancelApprovedBrand(ctx context.Context, userID, reason string, at time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "req_type": models.RequestBrand, "status": models.RequestApproved},
		bson.M{"$set": bson.M{"status": models.RequestCancelled, "rejection_reason": reason, "updated_at": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoVerificationRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
