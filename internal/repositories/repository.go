package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names shared by every store implementation.
const (
	CollectionUsers         = "users"
	CollectionPages         = "pages"
	CollectionBlocks        = "blocks"
	CollectionEvents        = "events"
	CollectionShowcases     = "showcases"
	CollectionVerifications = "verification_requests"
	CollectionNotifications = "notifications"
	CollectionCampaigns     = "notification_campaigns"
	CollectionReserved      = "reserved_usernames"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Set bundles one repository per collection so callers can swap backends at once.
type Set struct {
	Users         UserRepository
	Pages         PageRepository
	Content       ContentRepository
	Verifications VerificationRepository
	Notifications NotificationRepository
	Campaigns     CampaignRepository
	Reserved      ReservedUsernameRepository
}

// NewMongoSet wires every repository to its collection in db.
func NewMongoSet(db *mongo.Database) Set {
	return Set{
		Users:         NewMongoUserRepository(db),
		Pages:         NewMongoPageRepository(db),
		Content:       NewMongoContentRepository(db),
		Verifications: NewMongoVerificationRepository(db),
		Notifications: NewMongoNotificationRepository(db),
		Campaigns:     NewMongoCampaignRepository(db),
		Reserved:      NewMongoReservedUsernameRepository(db),
	}
}

// mapError translates driver errors into the package sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
