package models

import "time"

// Notification types stored in Notification.Type.
const (
	NotificationTypeVerificationApproved = "verification_approved"
	NotificationTypeVerificationRejected = "verification_rejected"
	NotificationTypeVerificationRevoked  = "verification_revoked"
	NotificationTypeCampaign             = "campaign"
)

// Notification is a read-once message addressed to a single user.
type Notification struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	Type       string    `json:"type" bson:"type"`
	Message    string    `json:"message" bson:"message"`
	Read       bool      `json:"read" bson:"read"`
	CampaignID string    `json:"campaign_id,omitempty" bson:"campaign_id,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NotificationCampaign records a bulk send. The read count is never stored.
type NotificationCampaign struct {
	ID             string         `json:"id" bson:"_id"`
	Target         CampaignTarget `json:"target" bson:"target"`
	RecipientIDs   []string       `json:"recipient_ids" bson:"recipient_ids"`
	Message        string         `json:"message" bson:"message"`
	TotalRecipient int            `json:"total_recipients" bson:"total_recipients"`
	CreatedBy      string         `json:"created_by" bson:"created_by"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}

// CampaignDetail is a campaign with its read count computed at fetch time.
type CampaignDetail struct {
	NotificationCampaign
	ReadCount int64 `json:"read_count"`
}

type SendCampaignRequest struct {
	Target  CampaignTarget `json:"target" validate:"required"`
	UserIDs []string       `json:"user_ids,omitempty"`
	Emails  []string       `json:"emails,omitempty" validate:"omitempty,dive,email"`
	Message string         `json:"message" validate:"required,min=1,max=1000"`
}
