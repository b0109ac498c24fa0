package services

import (
	"context"
	"strings"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/google/uuid"
)

const (
	inboxLimit     = 50
	campaignsLimit = 100
)

// NotificationService stores per-user notifications and admin campaigns.
type NotificationService struct {
	base
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	campaigns     repositories.CampaignRepository
}

func NewNotificationService(repos repositories.Set, opts ...Option) *NotificationService {
	return &NotificationService{
		base:          newBase(opts),
		users:         repos.Users,
		notifications: repos.Notifications,
		campaigns:     repos.Campaigns,
	}
}

// Notify stores a notification for userID. It never fails the caller: a
// storage error is logged and dropped.
func (s *NotificationService) Notify(ctx context.Context, userID, kind, message string) {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		s.logger.Error("failed to store notification", "user_id", userID, "type", kind, "error", err)
		return
	}
	s.metrics.NotificationsPersisted(1)
}

// SendCampaign resolves the recipients, records the campaign and fans out one
// notification per recipient linked to it.
func (s *NotificationService) SendCampaign(ctx context.Context, actor models.Actor, req models.SendCampaignRequest) (*models.CampaignDetail, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrValidation("message is required")
	}

	recipients, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrValidation("no recipients matched")
	}
	if req.Target == models.TargetSingle && len(recipients) != 1 {
		return nil, ErrValidation("single target requires exactly one recipient")
	}

	now := s.now()
	campaign := models.NotificationCampaign{
		ID:             uuid.NewString(),
		Target:         req.Target,
		RecipientIDs:   recipients,
		Message:        message,
		TotalRecipient: len(recipients),
		CreatedBy:      actor.ID,
		CreatedAt:      now,
	}
	if err := s.campaigns.CreateCampaign(ctx, &campaign); err != nil {
		return nil, WrapError(err, "create campaign")
	}

	batch := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		batch = append(batch, models.Notification{
			ID:         uuid.NewString(),
			UserID:     userID,
			Type:       models.NotificationTypeCampaign,
			Message:    message,
			CampaignID: campaign.ID,
			CreatedAt:  now,
		})
	}
	if err := s.notifications.CreateNotifications(ctx, batch); err != nil {
		return nil, WrapError(err, "fan out campaign")
	}
	s.metrics.NotificationsPersisted(len(batch))

	s.logger.Info("campaign sent", "campaign_id", campaign.ID, "target", req.Target, "recipients", len(recipients), "by", actor.ID)
	return &models.CampaignDetail{NotificationCampaign: campaign}, nil
}

func (s *NotificationService) resolveRecipients(ctx context.Context, req models.SendCampaignRequest) ([]string, error) {
	switch req.Target {
	case models.TargetAll:
		ids, err := s.users.ListUserIDs(ctx)
		if err != nil {
			return nil, WrapError(err, "list users")
		}
		return ids, nil
	case models.TargetSelected, models.TargetSingle:
	default:
		return nil, ErrValidation("target must be all, selected or single")
	}

	if req.Target == models.TargetSingle && len(req.UserIDs)+len(req.Emails) != 1 {
		return nil, ErrValidation("single target requires exactly one user id or email")
	}

	var ids []string
	if len(req.UserIDs) > 0 {
		found, err := s.users.FindExistingIDs(ctx, req.UserIDs)
		if err != nil {
			return nil, WrapError(err, "resolve user ids")
		}
		ids = append(ids, found...)
	}
	if len(req.Emails) > 0 {
		emails := make([]string, 0, len(req.Emails))
		for _, e := range req.Emails {
			emails = append(emails, strings.ToLower(strings.TrimSpace(e)))
		}
		found, err := s.users.FindIDsByEmails(ctx, emails)
		if err != nil {
			return nil, WrapError(err, "resolve emails")
		}
		ids = append(ids, found...)
	}
	return dedupe(ids), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GetCampaign returns a campaign with its read count computed now.
func (s *NotificationService) GetCampaign(ctx context.Context, actor models.Actor, id string) (*models.CampaignDetail, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	campaign, err := s.campaigns.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "campaign not found", "load campaign")
	}
	read, err := s.notifications.CountReadByCampaignID(ctx, id)
	if err != nil {
		return nil, WrapError(err, "count campaign reads")
	}
	return &models.CampaignDetail{NotificationCampaign: *campaign, ReadCount: read}, nil
}

func (s *NotificationService) ListCampaigns(ctx context.Context, actor models.Actor) ([]models.NotificationCampaign, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	campaigns, err := s.campaigns.ListCampaigns(ctx, campaignsLimit)
	if err != nil {
		return nil, WrapError(err, "list campaigns")
	}
	return campaigns, nil
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.notifications.GetByRecipientID(ctx, userID, inboxLimit)
	if err != nil {
		return nil, WrapError(err, "list notifications")
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, WrapError(err, "count unread notifications")
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.notifications.MarkAsRead(ctx, id, userID); err != nil {
		return notFoundAs(err, "notification not found", "mark notification read")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllAsRead(ctx, userID); err != nil {
		return WrapError(err, "mark notifications read")
	}
	return nil
}
