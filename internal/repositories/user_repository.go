package repositories

import (
	"context"

	"github.com/anonto42/biolink/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	FindIDsByEmails(ctx context.Context, emails []string) ([]string, error)
	FindExistingIDs(ctx context.Context, ids []string) ([]string, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	SetVerification(ctx context.Context, id string, isVerified bool, status models.VerificationStatus) error
	SetRole(ctx context.Context, id string, role models.Role) error
	SetFirebaseUID(ctx context.Context, id, firebaseUID string) error
	SetAnalytics(ctx context.Context, id string, analytics models.Analytics) error
	DeleteUser(ctx context.Context, id string) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(CollectionUsers)}
}

// withoutSecrets keeps credential material out of reads that never need it.
var withoutSecrets = bson.M{"password_hash": 0}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	return mapError(err)
}

// GetUserByID returns the user without its password hash.
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(withoutSecrets)
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetUserByEmail returns the full document, including the password hash, for sign-in.
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(withoutSecrets)
	if err := r.collection.FindOne(ctx, bson.M{"firebase_uid": firebaseUID}, opts).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindIDsByEmails(ctx context.Context, emails []string) ([]string, error) {
	return r.findIDs(ctx, bson.M{"email": bson.M{"$in": emails}})
}

func (r *MongoUserRepository) FindExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	return r.findIDs(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoUserRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	return r.findIDs(ctx, bson.M{})
}

func (r *MongoUserRepository) findIDs(ctx context.Context, filter bson.M) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *MongoUserRepository) SetVerification(ctx context.Context, id string, isVerified bool, status models.VerificationStatus) error {
	return r.set(ctx, id, bson.M{"is_verified": isVerified, "verification_status": status})
}

func (r *MongoUserRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	return r.set(ctx, id, bson.M{"role": role})
}

func (r *MongoUserRepository) SetFirebaseUID(ctx context.Context, id, firebaseUID string) error {
	return r.set(ctx, id, bson.M{"firebase_uid": firebaseUID})
}

func (r *MongoUserRepository) SetAnalytics(ctx context.Context, id string, analytics models.Analytics) error {
	return r.set(ctx, id, bson.M{"analytics": analytics})
}

func (r *MongoUserRepository) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
