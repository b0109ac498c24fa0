package models

import "fmt"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// IsStaff reports whether the role may run administrative workflows.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOwner
}

func (r *Role) UnmarshalText(text []byte) error {
	v := Role(text)
	if !v.Valid() {
		return fmt.Errorf("unknown role %q", text)
	}
	*r = v
	return nil
}

// VerificationStatus mirrors the state of a user's personal verification.
type VerificationStatus string

const (
	VerificationNone      VerificationStatus = "none"
	VerificationPending   VerificationStatus = "pending"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationCancelled VerificationStatus = "cancelled"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationNone, VerificationPending, VerificationApproved, VerificationRejected, VerificationCancelled:
		return true
	}
	return false
}

func (s *VerificationStatus) UnmarshalText(text []byte) error {
	v := VerificationStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown verification status %q", text)
	}
	*s = v
	return nil
}

// BrandStatus is the brand verification state of a single page.
type BrandStatus string

const (
	BrandNone     BrandStatus = "none"
	BrandPending  BrandStatus = "pending"
	BrandVerified BrandStatus = "verified"
	BrandRejected BrandStatus = "rejected"
)

func (s BrandStatus) Valid() bool {
	switch s {
	case BrandNone, BrandPending, BrandVerified, BrandRejected:
		return true
	}
	return false
}

func (s *BrandStatus) UnmarshalText(text []byte) error {
	v := BrandStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown brand status %q", text)
	}
	*s = v
	return nil
}

// RequestType distinguishes personal and brand verification tickets.
type RequestType string

const (
	RequestPersonal RequestType = "personal"
	RequestBrand    RequestType = "brand"
)

func (t RequestType) Valid() bool {
	return t == RequestPersonal || t == RequestBrand
}

func (t *RequestType) UnmarshalText(text []byte) error {
	v := RequestType(text)
	if !v.Valid() {
		return fmt.Errorf("unknown request type %q", text)
	}
	*t = v
	return nil
}

// RequestStatus is the workflow state of a verification ticket.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal workflow step.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	switch s {
	case RequestPending:
		return next == RequestApproved || next == RequestRejected || next == RequestCancelled
	case RequestApproved:
		return next == RequestCancelled
	case RequestRejected, RequestCancelled:
		return next == RequestPending
	}
	return false
}

func (s *RequestStatus) UnmarshalText(text []byte) error {
	v := RequestStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown request status %q", text)
	}
	*s = v
	return nil
}

// ParseRequestStatus converts a query value, treating "" as no filter.
func ParseRequestStatus(raw string) (*RequestStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var s RequestStatus
	if err := s.UnmarshalText([]byte(raw)); err != nil {
		return nil, err
	}
	return &s, nil
}

// CampaignTarget selects how campaign recipients are resolved.
type CampaignTarget string

const (
	TargetAll      CampaignTarget = "all"
	TargetSelected CampaignTarget = "selected"
	TargetSingle   CampaignTarget = "single"
)

func (t CampaignTarget) Valid() bool {
	switch t {
	case TargetAll, TargetSelected, TargetSingle:
		return true
	}
	return false
}

func (t *CampaignTarget) UnmarshalText(text []byte) error {
	v := CampaignTarget(text)
	if !v.Valid() {
		return fmt.Errorf("unknown campaign target %q", text)
	}
	*t = v
	return nil
}
