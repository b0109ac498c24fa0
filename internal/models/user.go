package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID                 string             `json:"id" bson:"_id"`
	Email              string             `json:"email" bson:"email"`
	PasswordHash       string             `json:"-" bson:"password_hash,omitempty"`
	FirebaseUID        string             `json:"-" bson:"firebase_uid,omitempty"`
	Role               Role               `json:"role" bson:"role"`
	IsVerified         bool               `json:"is_verified" bson:"is_verified"`
	VerificationStatus VerificationStatus `json:"verification_status" bson:"verification_status"`
	Analytics          Analytics          `json:"analytics" bson:"analytics"`
	Leads              []Lead             `json:"leads,omitempty" bson:"leads,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
}

// Analytics carries the tracking ids injected into every public page of the user.
type Analytics struct {
	FacebookPixelID   string `json:"facebook_pixel_id,omitempty" bson:"facebook_pixel_id,omitempty"`
	GoogleAnalyticsID string `json:"google_analytics_id,omitempty" bson:"google_analytics_id,omitempty"`
}

// Lead is a contact-form submission left on one of the user's pages.
type Lead struct {
	PageID    string    `json:"page_id" bson:"page_id"`
	Name      string    `json:"name" bson:"name"`
	Contact   string    `json:"contact" bson:"contact"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Actor is the resolved identity of the caller of a workflow operation.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username,omitempty" validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateAnalyticsRequest struct {
	FacebookPixelID   string `json:"facebook_pixel_id" validate:"omitempty,max=64"`
	GoogleAnalyticsID string `json:"google_analytics_id" validate:"omitempty,max=64"`
}

type SetRoleRequest struct {
	Role Role `json:"role" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
