package models

import "time"

// Page is a public bio-link surface owned by exactly one user.
type Page struct {
	ID          string      `json:"id" bson:"_id"`
	UserID      string      `json:"user_id" bson:"user_id"`
	Username    string      `json:"username" bson:"username"`
	Name        string      `json:"name" bson:"name"`
	Bio         string      `json:"bio" bson:"bio"`
	Avatar      string      `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Cover       string      `json:"cover,omitempty" bson:"cover,omitempty"`
	IsMainPage  bool        `json:"is_main_page" bson:"is_main_page"`
	IsVerified  bool        `json:"is_verified" bson:"is_verified"`
	IsBrand     bool        `json:"is_brand" bson:"is_brand"`
	BrandStatus BrandStatus `json:"brand_status" bson:"brand_status"`
	Theme       string      `json:"theme,omitempty" bson:"theme,omitempty"`
	SEO         SEO         `json:"seo" bson:"seo"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
}

type SEO struct {
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	NoIndex     bool   `json:"no_index,omitempty" bson:"no_index,omitempty"`
}

// PageVerification is a partial update of the verification fields of a page.
// Nil fields are left untouched.
type PageVerification struct {
	IsVerified  *bool
	IsBrand     *bool
	BrandStatus *BrandStatus
}

// PageAttributes is a partial update of the presentational fields of a page.
type PageAttributes struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio    *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar,omitempty"`
	Cover  *string `json:"cover,omitempty"`
	Theme  *string `json:"theme,omitempty" validate:"omitempty,max=50"`
	SEO    *SEO    `json:"seo,omitempty"`
}

func (a PageAttributes) Empty() bool {
	return a.Name == nil && a.Bio == nil && a.Avatar == nil && a.Cover == nil && a.Theme == nil && a.SEO == nil
}

type CreatePageRequest struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Bio      string `json:"bio,omitempty" validate:"max=500"`
	Avatar   string `json:"avatar,omitempty"`
	Cover    string `json:"cover,omitempty"`
}

type RenamePageRequest struct {
	Username string `json:"username" validate:"required"`
}

type CheckUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// UsernameAvailability answers a check-username query.
type UsernameAvailability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ReservedUsername blocks a slug from being claimed by any page.
type ReservedUsername struct {
	Username  string    `json:"username" bson:"_id"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type ReserveUsernameRequest struct {
	Username string `json:"username" validate:"required"`
	Comment  string `json:"comment,omitempty" validate:"max=200"`
}
