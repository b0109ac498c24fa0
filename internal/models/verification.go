package models

import "time"

// VerificationRequest is a personal or brand verification ticket.
type VerificationRequest struct {
	ID              string        `json:"id" bson:"_id"`
	UserID          string        `json:"user_id" bson:"user_id"`
	ReqType         RequestType   `json:"req_type" bson:"req_type"`
	PageID          string        `json:"page_id,omitempty" bson:"page_id"`
	Status          RequestStatus `json:"status" bson:"status"`
	Applicant       Applicant     `json:"applicant" bson:"applicant"`
	RejectionReason string        `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// Applicant is the free-form metadata supplied with a request.
type Applicant struct {
	Name        string   `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,max=100"`
	Contact     string   `json:"contact,omitempty" bson:"contact,omitempty" validate:"omitempty,max=200"`
	SocialLinks []string `json:"social_links,omitempty" bson:"social_links,omitempty" validate:"omitempty,max=10,dive,url"`
	Category    string   `json:"category,omitempty" bson:"category,omitempty" validate:"omitempty,max=100"`
	Website     string   `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
}

type SubmitVerificationRequest struct {
	ReqType   RequestType `json:"req_type" validate:"required"`
	PageID    string      `json:"page_id,omitempty"`
	Applicant Applicant   `json:"applicant"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
