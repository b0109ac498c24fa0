package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories/memory"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

// failingNotifications rejects every single-notification write.
type failingNotifications struct {
	*memory.NotificationRepository
}

func (failingNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("write refused")
}

type NotificationServiceSuite struct {
	suite.Suite
	ctx   context.Context
	f     *fixture
	admin models.Actor
	alice models.Actor
	bob   models.Actor
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture()
	s.admin = s.f.user("admin@example.com", models.RoleAdmin)
	s.alice = s.f.user("alice@example.com", models.RoleUser)
	s.bob = s.f.user("bob@example.com", models.RoleUser)
}

func (s *NotificationServiceSuite) send(req models.SendCampaignRequest) (*models.CampaignDetail, error) {
	return s.f.notifications.SendCampaign(s.ctx, s.admin, req)
}

func (s *NotificationServiceSuite) TestNotifyAndInbox() {
	s.f.notifications.Notify(s.ctx, s.alice.ID, models.NotificationTypeCampaign, "first")
	s.f.notifications.Notify(s.ctx, s.alice.ID, models.NotificationTypeCampaign, "second")

	list, err := s.f.notifications.List(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("second", list[0].Message)

	unread, err := s.f.notifications.UnreadCount(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), unread)

	s.Require().NoError(s.f.notifications.MarkRead(s.ctx, list[0].ID, s.alice.ID))
	unread, _ = s.f.notifications.UnreadCount(s.ctx, s.alice.ID)
	s.Equal(int64(1), unread)

	err = s.f.notifications.MarkRead(s.ctx, list[1].ID, s.bob.ID)
	s.Equal(services.CodeNotFound, services.CodeOf(err))

	s.Require().NoError(s.f.notifications.MarkAllRead(s.ctx, s.alice.ID))
	unread, _ = s.f.notifications.UnreadCount(s.ctx, s.alice.ID)
	s.Zero(unread)
}

func (s *NotificationServiceSuite) TestNotifySwallowsStorageErrors() {
	set := s.f.store.Set()
	set.Notifications = failingNotifications{s.f.store.Notifications}
	svc := services.NewNotificationService(set, services.WithMetrics(s.f.metrics))

	s.NotPanics(func() {
		svc.Notify(s.ctx, s.alice.ID, models.NotificationTypeVerificationApproved, "approved")
	})
	list, err := svc.List(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Empty(list)
	s.Zero(testutil.ToFloat64(s.f.metrics.NotificationsSent))
}

func (s *NotificationServiceSuite) TestCampaignToAll() {
	campaign, err := s.send(models.SendCampaignRequest{Target: models.TargetAll, Message: "  hello everyone  "})
	s.Require().NoError(err)
	s.Equal(3, campaign.TotalRecipient)
	s.Equal("hello everyone", campaign.Message)
	s.Equal(s.admin.ID, campaign.CreatedBy)

	for _, id := range []string{s.admin.ID, s.alice.ID, s.bob.ID} {
		list, err := s.f.notifications.List(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(campaign.ID, list[0].CampaignID)
	}
	s.Equal(3.0, testutil.ToFloat64(s.f.metrics.NotificationsSent))
}

func (s *NotificationServiceSuite) TestCampaignReadCount() {
	campaign, err := s.send(models.SendCampaignRequest{
		Target:  models.TargetSelected,
		UserIDs: []string{s.alice.ID, "unknown-id"},
		Emails:  []string{"BOB@example.com", "alice@example.com"},
		Message: "selected",
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{s.alice.ID, s.bob.ID}, campaign.RecipientIDs)

	detail, err := s.f.notifications.GetCampaign(s.ctx, s.admin, campaign.ID)
	s.Require().NoError(err)
	s.Zero(detail.ReadCount)

	inbox, err := s.f.notifications.List(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.f.notifications.MarkRead(s.ctx, inbox[0].ID, s.alice.ID))

	detail, err = s.f.notifications.GetCampaign(s.ctx, s.admin, campaign.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), detail.ReadCount)
	s.Equal(2, detail.TotalRecipient)
}

func (s *NotificationServiceSuite) TestCampaignValidation() {
	s.Run("non staff is forbidden", func() {
		_, err := s.f.notifications.SendCampaign(s.ctx, s.alice, models.SendCampaignRequest{Target: models.TargetAll, Message: "hi"})
		s.Equal(services.CodeForbidden, services.CodeOf(err))
		_, err = s.f.notifications.ListCampaigns(s.ctx, s.alice)
		s.Equal(services.CodeForbidden, services.CodeOf(err))
	})

	s.Run("blank message", func() {
		_, err := s.send(models.SendCampaignRequest{Target: models.TargetAll, Message: "   "})
		s.Equal(services.CodeValidation, services.CodeOf(err))
	})

	s.Run("no recipient matched", func() {
		_, err := s.send(models.SendCampaignRequest{Target: models.TargetSelected, Emails: []string{"ghost@example.com"}, Message: "hi"})
		s.Equal(services.CodeValidation, services.CodeOf(err))
	})

	s.Run("single needs exactly one input", func() {
		_, err := s.send(models.SendCampaignRequest{Target: models.TargetSingle, UserIDs: []string{s.alice.ID, s.bob.ID}, Message: "hi"})
		s.Equal(services.CodeValidation, services.CodeOf(err))
		_, err = s.send(models.SendCampaignRequest{Target: models.TargetSingle, Message: "hi"})
		s.Equal(services.CodeValidation, services.CodeOf(err))
	})

	s.Run("single by email", func() {
		campaign, err := s.send(models.SendCampaignRequest{Target: models.TargetSingle, Emails: []string{"bob@example.com"}, Message: "hi bob"})
		s.Require().NoError(err)
		s.Equal([]string{s.bob.ID}, campaign.RecipientIDs)
	})

	s.Run("unknown campaign", func() {
		_, err := s.f.notifications.GetCampaign(s.ctx, s.admin, "missing")
		s.Equal(services.CodeNotFound, services.CodeOf(err))
	})

	campaigns, err := s.f.notifications.ListCampaigns(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Len(campaigns, 1)
}
