package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/google/uuid"
)

// Notifier delivers a single user notification. Delivery failures are the
// notifier's concern; callers never see them.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, message string)
}

const (
	adminQueueLimit      = 200
	revokedBrandReason   = "Personal verification revoked"
	defaultRejectReason  = "Request did not meet verification requirements"
	defaultRevokeReason  = "Verification revoked by an administrator"
	directGrantApplicant = "Granted by administrator"
)

// VerificationService runs the personal and brand verification workflow.
type VerificationService struct {
	base
	users    repositories.UserRepository
	pages    repositories.PageRepository
	requests repositories.VerificationRepository
	notifier Notifier
	live     Publisher
}

func NewVerificationService(repos repositories.Set, notifier Notifier, live Publisher, opts ...Option) *VerificationService {
	return &VerificationService{
		base:     newBase(opts),
		users:    repos.Users,
		pages:    repos.Pages,
		requests: repos.Verifications,
		notifier: notifier,
		live:     live,
	}
}

// Submit opens a pending request for the actor.
func (s *VerificationService) Submit(ctx context.Context, actor models.Actor, req models.SubmitVerificationRequest) (*models.VerificationRequest, error) {
	if !req.ReqType.Valid() {
		return nil, ErrValidation("req_type must be personal or brand")
	}

	var page *models.Page
	pageID := ""
	if req.ReqType == models.RequestBrand {
		var err error
		if page, err = s.brandTarget(ctx, actor.ID, req.PageID); err != nil {
			return nil, err
		}
		pageID = page.ID
	}

	if err := s.ensureNoPending(ctx, actor.ID, req.ReqType, pageID); err != nil {
		return nil, err
	}
	user, err := s.ensureNotGranted(ctx, actor.ID, req.ReqType, page)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &models.VerificationRequest{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		ReqType:   req.ReqType,
		PageID:    pageID,
		Status:    models.RequestPending,
		Applicant: req.Applicant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.requests.CreateRequest(ctx, ticket); err != nil {
		return nil, WrapError(err, "create verification request")
	}

	switch ticket.ReqType {
	case models.RequestBrand:
		if err := s.pages.SetVerification(ctx, pageID, models.PageVerification{BrandStatus: brandPtr(models.BrandPending)}); err != nil {
			return nil, WrapError(err, "mark page brand pending")
		}
		logPush(s.logger, "brand submit", s.live.Publish(ctx, page.Username), "request_id", ticket.ID)
	case models.RequestPersonal:
		if err := s.users.SetVerification(ctx, actor.ID, user.IsVerified, models.VerificationPending); err != nil {
			return nil, WrapError(err, "mark user pending")
		}
	}

	s.metrics.Transition(string(ticket.ReqType), string(ticket.Status))
	s.logger.Info("verification requested", "request_id", ticket.ID, "user_id", actor.ID, "type", ticket.ReqType, "page_id", pageID)
	return ticket, nil
}

// brandTarget checks every precondition of a brand request and returns its page.
func (s *VerificationService) brandTarget(ctx context.Context, userID, pageID string) (*models.Page, error) {
	if pageID == "" {
		return nil, ErrValidation("page_id is required for brand verification")
	}
	verified, err := s.pages.HasVerifiedPage(ctx, userID)
	if err != nil {
		return nil, WrapError(err, "check verified pages")
	}
	if !verified {
		return nil, ErrPolicy("brand verification requires a verified page")
	}
	page, err := s.pages.GetOwnedPage(ctx, pageID, userID)
	if err != nil {
		return nil, notFoundAs(err, "page not found", "load page")
	}
	_, main, err := resolveMainPage(ctx, s.pages, userID)
	if err != nil {
		return nil, err
	}
	if page.IsMainPage || (main != nil && main.ID == page.ID) {
		return nil, ErrPolicy("the main page cannot be verified as a brand")
	}
	return page, nil
}

// ensureNotGranted refuses a request for a verification the user or page
// already holds. The user is returned for personal requests.
func (s *VerificationService) ensureNotGranted(ctx context.Context, userID string, reqType models.RequestType, page *models.Page) (*models.User, error) {
	if reqType == models.RequestBrand {
		if page.BrandStatus == models.BrandVerified {
			return nil, ErrPolicy("page is already a verified brand")
		}
		return nil, nil
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found", "load user")
	}
	if user.IsVerified {
		return nil, ErrPolicy("user is already verified")
	}
	return user, nil
}

func (s *VerificationService) ensureNoPending(ctx context.Context, userID string, reqType models.RequestType, pageID string) error {
	_, err := s.requests.FindPending(ctx, userID, reqType, pageID)
	switch {
	case err == nil:
		return ErrConflict("a pending request already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return WrapError(err, "check pending requests")
	}
	return nil
}

func (s *VerificationService) Approve(ctx context.Context, actor models.Actor, id string) (*models.VerificationRequest, error) {
	ticket, err := s.transition(ctx, actor, id, models.RequestApproved, "")
	if err != nil {
		return nil, err
	}

	switch ticket.ReqType {
	case models.RequestBrand:
		err = s.pages.SetVerification(ctx, ticket.PageID, models.PageVerification{
			IsVerified:  boolPtr(true),
			IsBrand:     boolPtr(true),
			BrandStatus: brandPtr(models.BrandVerified),
		})
		if err != nil {
			return nil, notFoundAs(err, "page not found", "verify brand page")
		}
		logPush(s.logger, "brand approve", s.live.PublishByPageID(ctx, ticket.PageID), "request_id", id)
		s.notifier.Notify(ctx, ticket.UserID, models.NotificationTypeVerificationApproved,
			"Your brand verification request has been approved.")
	case models.RequestPersonal:
		if err := s.verifyUser(ctx, ticket.UserID); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, ticket.UserID, models.NotificationTypeVerificationApproved,
			"Your verification request has been approved.")
	}

	s.logger.Info("verification approved", "request_id", id, "type", ticket.ReqType, "by", actor.ID)
	return ticket, nil
}

// verifyUser marks the user and their main page verified.
func (s *VerificationService) verifyUser(ctx context.Context, userID string) error {
	if err := s.users.SetVerification(ctx, userID, true, models.VerificationApproved); err != nil {
		return notFoundAs(err, "user not found", "verify user")
	}
	_, main, err := resolveMainPage(ctx, s.pages, userID)
	if err != nil {
		return err
	}
	if main == nil {
		return nil
	}
	if err := s.pages.SetVerification(ctx, main.ID, models.PageVerification{IsVerified: boolPtr(true)}); err != nil {
		return WrapError(err, "verify main page")
	}
	logPush(s.logger, "personal approve", s.live.Publish(ctx, main.Username), "user_id", userID)
	return nil
}

func (s *VerificationService) Reject(ctx context.Context, actor models.Actor, id, reason string) (*models.VerificationRequest, error) {
	if reason == "" {
		reason = defaultRejectReason
	}
	ticket, err := s.transition(ctx, actor, id, models.RequestRejected, reason)
	if err != nil {
		return nil, err
	}

	switch ticket.ReqType {
	case models.RequestBrand:
		if err := s.pages.SetVerification(ctx, ticket.PageID, models.PageVerification{BrandStatus: brandPtr(models.BrandRejected)}); err != nil {
			return nil, notFoundAs(err, "page not found", "reject brand page")
		}
		logPush(s.logger, "brand reject", s.live.PublishByPageID(ctx, ticket.PageID), "request_id", id)
	case models.RequestPersonal:
		user, err := s.users.GetUserByID(ctx, ticket.UserID)
		if err != nil {
			return nil, notFoundAs(err, "user not found", "load user")
		}
		if err := s.users.SetVerification(ctx, user.ID, user.IsVerified, models.VerificationRejected); err != nil {
			return nil, WrapError(err, "reject user verification")
		}
	}

	s.notifier.Notify(ctx, ticket.UserID, models.NotificationTypeVerificationRejected,
		fmt.Sprintf("Your %s verification request was rejected: %s", ticket.ReqType, reason))
	s.logger.Info("verification rejected", "request_id", id, "type", ticket.ReqType, "by", actor.ID)
	return ticket, nil
}

// Revoke cancels a pending or approved request and withdraws what it granted.
// Revoking a personal request strips every page the user owns and cancels
// their approved brand requests. Page updates are not transactional: a failed
// page is logged and the rest still proceed.
func (s *VerificationService) Revoke(ctx context.Context, actor models.Actor, id, reason string) (*models.VerificationRequest, error) {
	if reason == "" {
		reason = defaultRevokeReason
	}
	ticket, err := s.transition(ctx, actor, id, models.RequestCancelled, reason)
	if err != nil {
		return nil, err
	}

	switch ticket.ReqType {
	case models.RequestBrand:
		err = s.pages.SetVerification(ctx, ticket.PageID, models.PageVerification{
			IsVerified:  boolPtr(false),
			BrandStatus: brandPtr(models.BrandRejected),
		})
		if err != nil {
			return nil, notFoundAs(err, "page not found", "revoke brand page")
		}
		logPush(s.logger, "brand revoke", s.live.PublishByPageID(ctx, ticket.PageID), "request_id", id)
	case models.RequestPersonal:
		if err := s.revokeUser(ctx, ticket.UserID); err != nil {
			return nil, err
		}
	}

	s.notifier.Notify(ctx, ticket.UserID, models.NotificationTypeVerificationRevoked,
		fmt.Sprintf("Your %s verification has been revoked: %s", ticket.ReqType, reason))
	s.logger.Info("verification revoked", "request_id", id, "type", ticket.ReqType, "by", actor.ID)
	return ticket, nil
}

func (s *VerificationService) revokeUser(ctx context.Context, userID string) error {
	if err := s.users.SetVerification(ctx, userID, false, models.VerificationCancelled); err != nil {
		return notFoundAs(err, "user not found", "revoke user verification")
	}
	pages, err := s.pages.GetPagesByUserID(ctx, userID)
	if err != nil {
		return WrapError(err, "list pages")
	}

	strip := models.PageVerification{
		IsVerified:  boolPtr(false),
		IsBrand:     boolPtr(false),
		BrandStatus: brandPtr(models.BrandRejected),
	}
	for _, page := range pages {
		if err := s.pages.SetVerification(ctx, page.ID, strip); err != nil {
			s.logger.Error("failed to strip page verification", "page_id", page.ID, "user_id", userID, "error", err)
		}
	}

	cancelled, err := s.requests.CancelApprovedBrand(ctx, userID, revokedBrandReason, s.now())
	if err != nil {
		s.logger.Error("failed to cancel approved brand requests", "user_id", userID, "error", err)
	} else if cancelled > 0 {
		s.logger.Info("brand requests cancelled", "user_id", userID, "count", cancelled)
		s.metrics.TransitionN(string(models.RequestBrand), string(models.RequestCancelled), cancelled)
	}

	for _, page := range pages {
		logPush(s.logger, "personal revoke", s.live.Publish(ctx, page.Username), "page_id", page.ID)
	}
	return nil
}

// Resume reopens a rejected or cancelled request. Page and user flags are not touched.
func (s *VerificationService) Resume(ctx context.Context, actor models.Actor, id string) (*models.VerificationRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ticket, err := s.requests.GetRequestByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "verification request not found", "load verification request")
	}
	if err := s.ensureNoPending(ctx, ticket.UserID, ticket.ReqType, ticket.PageID); err != nil {
		return nil, err
	}
	var page *models.Page
	if ticket.ReqType == models.RequestBrand {
		if page, err = s.pages.GetPageByID(ctx, ticket.PageID); err != nil {
			return nil, notFoundAs(err, "page not found", "load page")
		}
	}
	if _, err := s.ensureNotGranted(ctx, ticket.UserID, ticket.ReqType, page); err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, actor, ticket, models.RequestPending, "")
}

// DirectGrant verifies a user without a request of their own. A pending
// personal request is approved; otherwise an approved one is recorded.
func (s *VerificationService) DirectGrant(ctx context.Context, actor models.Actor, userID string) (*models.VerificationRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found", "load user")
	}

	pending, err := s.requests.FindPending(ctx, user.ID, models.RequestPersonal, "")
	var ticket *models.VerificationRequest
	switch {
	case err == nil:
		if ticket, err = s.applyTransition(ctx, actor, pending, models.RequestApproved, ""); err != nil {
			return nil, err
		}
	case errors.Is(err, repositories.ErrNotFound):
		now := s.now()
		ticket = &models.VerificationRequest{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			ReqType:   models.RequestPersonal,
			Status:    models.RequestApproved,
			Applicant: models.Applicant{Name: directGrantApplicant, Contact: user.Email},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.requests.CreateRequest(ctx, ticket); err != nil {
			return nil, WrapError(err, "record direct grant")
		}
		s.metrics.Transition(string(ticket.ReqType), string(ticket.Status))
	default:
		return nil, WrapError(err, "check pending requests")
	}

	if err := s.verifyUser(ctx, user.ID); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, user.ID, models.NotificationTypeVerificationApproved,
		"Your account has been verified by an administrator.")
	s.logger.Info("verification granted", "user_id", user.ID, "request_id", ticket.ID, "by", actor.ID)
	return ticket, nil
}

// List returns the admin queue, newest first, optionally filtered by status.
func (s *VerificationService) List(ctx context.Context, actor models.Actor, status *models.RequestStatus) ([]models.VerificationRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListRequests(ctx, status, adminQueueLimit)
	if err != nil {
		return nil, WrapError(err, "list verification requests")
	}
	return requests, nil
}

func (s *VerificationService) ListMine(ctx context.Context, userID string) ([]models.VerificationRequest, error) {
	requests, err := s.requests.ListRequestsByUserID(ctx, userID)
	if err != nil {
		return nil, WrapError(err, "list verification requests")
	}
	return requests, nil
}

// transition loads a request and moves it to next on behalf of staff.
func (s *VerificationService) transition(ctx context.Context, actor models.Actor, id string, next models.RequestStatus, reason string) (*models.VerificationRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ticket, err := s.requests.GetRequestByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "verification request not found", "load verification request")
	}
	return s.applyTransition(ctx, actor, ticket, next, reason)
}

func (s *VerificationService) applyTransition(ctx context.Context, actor models.Actor, ticket *models.VerificationRequest, next models.RequestStatus, reason string) (*models.VerificationRequest, error) {
	if !ticket.Status.CanTransition(next) {
		return nil, ErrConflict(fmt.Sprintf("cannot move a %s request to %s", ticket.Status, next))
	}
	now := s.now()
	if err := s.requests.SetStatus(ctx, ticket.ID, next, reason, now); err != nil {
		return nil, notFoundAs(err, "verification request not found", "update verification request")
	}
	ticket.Status = next
	ticket.RejectionReason = reason
	ticket.UpdatedAt = now
	s.metrics.Transition(string(ticket.ReqType), string(next))
	return ticket, nil
}
