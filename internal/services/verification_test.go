package services_test

import (
	"context"
	"testing"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type VerificationServiceSuite struct {
	suite.Suite
	ctx   context.Context
	f     *fixture
	user  models.Actor
	admin models.Actor
	main  *models.Page
	shop  *models.Page
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newFixture()
	s.user = s.f.user("alice@example.com", models.RoleUser)
	s.admin = s.f.user("admin@example.com", models.RoleAdmin)
	s.main = s.f.page(s.user.ID, "alice")
	s.shop = s.f.page(s.user.ID, "alice-shop")
}

func (s *VerificationServiceSuite) submitPersonal() *models.VerificationRequest {
	req, err := s.f.verification.Submit(s.ctx, s.user, models.SubmitVerificationRequest{
		ReqType:   models.RequestPersonal,
		Applicant: models.Applicant{Name: "Alice"},
	})
	s.Require().NoError(err)
	return req
}

func (s *VerificationServiceSuite) approvePersonal() *models.VerificationRequest {
	req := s.submitPersonal()
	approved, err := s.f.verification.Approve(s.ctx, s.admin, req.ID)
	s.Require().NoError(err)
	return approved
}

func (s *VerificationServiceSuite) submitBrand(pageID string) (*models.VerificationRequest, error) {
	return s.f.verification.Submit(s.ctx, s.user, models.SubmitVerificationRequest{
		ReqType: models.RequestBrand,
		PageID:  pageID,
	})
}

func (s *VerificationServiceSuite) notificationTypes(userID string) []string {
	list, err := s.f.notifications.List(s.ctx, userID)
	s.Require().NoError(err)
	var kinds []string
	for _, n := range list {
		kinds = append(kinds, n.Type)
	}
	return kinds
}

func (s *VerificationServiceSuite) TestSubmitPersonal() {
	req := s.submitPersonal()
	s.Equal(models.RequestPending, req.Status)
	s.Empty(req.PageID)
	s.Equal(models.VerificationPending, s.f.loadUser(s.user.ID).VerificationStatus)

	_, err := s.f.verification.Submit(s.ctx, s.user, models.SubmitVerificationRequest{ReqType: models.RequestPersonal})
	s.Equal(services.CodeConflict, services.CodeOf(err))
}

func (s *VerificationServiceSuite) TestSubmitBrandPreconditions() {
	s.Run("page id is required", func() {
		_, err := s.submitBrand("")
		s.Equal(services.CodeValidation, services.CodeOf(err))
	})

	s.Run("user needs a verified page first", func() {
		_, err := s.submitBrand(s.shop.ID)
		s.Equal(services.CodePolicy, services.CodeOf(err))
	})

	s.approvePersonal()

	s.Run("foreign page is not found", func() {
		other := s.f.user("bob@example.com", models.RoleUser)
		bobPage := s.f.page(other.ID, "bobby")
		_, err := s.submitBrand(bobPage.ID)
		s.Equal(services.CodeNotFound, services.CodeOf(err))
	})

	s.Run("main page cannot become a brand", func() {
		_, err := s.submitBrand(s.main.ID)
		s.Equal(services.CodePolicy, services.CodeOf(err))
	})

	s.Run("valid request marks the page pending", func() {
		req, err := s.submitBrand(s.shop.ID)
		s.Require().NoError(err)
		s.Equal(s.shop.ID, req.PageID)
		s.Equal(models.BrandPending, s.f.loadPage(s.shop.ID).BrandStatus)
		s.Contains(s.f.live.Updates(), "alice-shop")
	})

	s.Run("second pending request for the same page conflicts", func() {
		_, err := s.submitBrand(s.shop.ID)
		s.Equal(services.CodeConflict, services.CodeOf(err))
	})
}

func (s *VerificationServiceSuite) TestApprovePersonal() {
	req := s.approvePersonal()
	s.Equal(models.RequestApproved, req.Status)

	user := s.f.loadUser(s.user.ID)
	s.True(user.IsVerified)
	s.Equal(models.VerificationApproved, user.VerificationStatus)
	s.True(s.f.loadPage(s.main.ID).IsVerified)
	s.False(s.f.loadPage(s.shop.ID).IsVerified)
	s.Contains(s.f.live.Updates(), "alice")
	s.Contains(s.notificationTypes(s.user.ID), models.NotificationTypeVerificationApproved)

	_, err := s.f.verification.Approve(s.ctx, s.admin, req.ID)
	s.Equal(services.CodeConflict, services.CodeOf(err))
}

func (s *VerificationServiceSuite) TestApproveRepairsMissingMainFlag() {
	s.Require().NoError(s.f.store.Pages.SetMainPage(s.ctx, s.main.ID, false))
	s.approvePersonal()
	page := s.f.loadPage(s.main.ID)
	s.True(page.IsMainPage)
	s.True(page.IsVerified)
}

func (s *VerificationServiceSuite) TestAdminOperationsRequireStaff() {
	req := s.submitPersonal()
	_, err := s.f.verification.Approve(s.ctx, s.user, req.ID)
	s.Equal(services.CodeForbidden, services.CodeOf(err))
	_, err = s.f.verification.Reject(s.ctx, s.user, req.ID, "")
	s.Equal(services.CodeForbidden, services.CodeOf(err))
	_, err = s.f.verification.DirectGrant(s.ctx, s.user, s.user.ID)
	s.Equal(services.CodeForbidden, services.CodeOf(err))
	_, err = s.f.verification.List(s.ctx, s.user, nil)
	s.Equal(services.CodeForbidden, services.CodeOf(err))

	_, err = s.f.verification.Approve(s.ctx, s.admin, "missing")
	s.Equal(services.CodeNotFound, services.CodeOf(err))
}

func (s *VerificationServiceSuite) TestReject() {
	s.Run("personal", func() {
		req := s.submitPersonal()
		rejected, err := s.f.verification.Reject(s.ctx, s.admin, req.ID, "blurry documents")
		s.Require().NoError(err)
		s.Equal(models.RequestRejected, rejected.Status)
		s.Equal("blurry documents", rejected.RejectionReason)
		s.Equal(models.VerificationRejected, s.f.loadUser(s.user.ID).VerificationStatus)
		s.Contains(s.notificationTypes(s.user.ID), models.NotificationTypeVerificationRejected)
	})

	s.Run("brand", func() {
		_, err := s.f.verification.DirectGrant(s.ctx, s.admin, s.user.ID)
		s.Require().NoError(err)
		req, err := s.submitBrand(s.shop.ID)
		s.Require().NoError(err)
		_, err = s.f.verification.Reject(s.ctx, s.admin, req.ID, "")
		s.Require().NoError(err)
		s.Equal(models.BrandRejected, s.f.loadPage(s.shop.ID).BrandStatus)
	})
}

func (s *VerificationServiceSuite) TestRevokeBrand() {
	s.approvePersonal()
	req, err := s.submitBrand(s.shop.ID)
	s.Require().NoError(err)
	_, err = s.f.verification.Approve(s.ctx, s.admin, req.ID)
	s.Require().NoError(err)

	shop := s.f.loadPage(s.shop.ID)
	s.True(shop.IsVerified)
	s.True(shop.IsBrand)
	s.Equal(models.BrandVerified, shop.BrandStatus)

	revoked, err := s.f.verification.Revoke(s.ctx, s.admin, req.ID, "")
	s.Require().NoError(err)
	s.Equal(models.RequestCancelled, revoked.Status)

	shop = s.f.loadPage(s.shop.ID)
	s.False(shop.IsVerified)
	s.Equal(models.BrandRejected, shop.BrandStatus)
	s.True(s.f.loadPage(s.main.ID).IsVerified)
	s.True(s.f.loadUser(s.user.ID).IsVerified)
}

func (s *VerificationServiceSuite) TestRevokePersonalCascades() {
	personal := s.approvePersonal()
	brand, err := s.submitBrand(s.shop.ID)
	s.Require().NoError(err)
	_, err = s.f.verification.Approve(s.ctx, s.admin, brand.ID)
	s.Require().NoError(err)

	_, err = s.f.verification.Revoke(s.ctx, s.admin, personal.ID, "fraud")
	s.Require().NoError(err)

	user := s.f.loadUser(s.user.ID)
	s.False(user.IsVerified)
	s.Equal(models.VerificationCancelled, user.VerificationStatus)

	pages, err := s.f.store.Pages.GetPagesByUserID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	for _, p := range pages {
		s.False(p.IsVerified, p.Username)
		s.False(p.IsBrand, p.Username)
		s.Equal(models.BrandRejected, p.BrandStatus, p.Username)
	}

	mine, err := s.f.verification.ListMine(s.ctx, s.user.ID)
	s.Require().NoError(err)
	for _, r := range mine {
		if r.ReqType == models.RequestBrand {
			s.Equal(models.RequestCancelled, r.Status)
			s.NotEmpty(r.RejectionReason)
		}
	}

	updates := s.f.live.Updates()
	s.Contains(updates, "alice")
	s.Contains(updates, "alice-shop")
	s.Contains(s.notificationTypes(s.user.ID), models.NotificationTypeVerificationRevoked)

	cancelled := s.f.metrics.VerificationTransitions.WithLabelValues("brand", "cancelled")
	s.Equal(1.0, testutil.ToFloat64(cancelled))
}

func (s *VerificationServiceSuite) TestResume() {
	req := s.submitPersonal()
	_, err := s.f.verification.Reject(s.ctx, s.admin, req.ID, "incomplete")
	s.Require().NoError(err)

	s.Run("conflicts with another pending request", func() {
		second := s.submitPersonal()
		_, err := s.f.verification.Resume(s.ctx, s.admin, req.ID)
		s.Equal(services.CodeConflict, services.CodeOf(err))
		_, err = s.f.verification.Reject(s.ctx, s.admin, second.ID, "")
		s.Require().NoError(err)
	})

	s.Run("reopens with reason cleared and flags untouched", func() {
		before := s.f.loadUser(s.user.ID)
		resumed, err := s.f.verification.Resume(s.ctx, s.admin, req.ID)
		s.Require().NoError(err)
		s.Equal(models.RequestPending, resumed.Status)
		s.Empty(resumed.RejectionReason)
		s.Equal(before.VerificationStatus, s.f.loadUser(s.user.ID).VerificationStatus)
	})

	s.Run("pending request cannot be resumed", func() {
		_, err := s.f.verification.Resume(s.ctx, s.admin, req.ID)
		s.Equal(services.CodeConflict, services.CodeOf(err))
	})
}

func (s *VerificationServiceSuite) TestGrantedVerificationIsNotRequestedAgain() {
	s.Run("verified user cannot submit personal", func() {
		original := s.approvePersonal()
		_, err := s.f.verification.Submit(s.ctx, s.user, models.SubmitVerificationRequest{ReqType: models.RequestPersonal})
		s.Equal(services.CodePolicy, services.CodeOf(err))

		user := s.f.loadUser(s.user.ID)
		s.True(user.IsVerified)
		s.Equal(models.VerificationApproved, user.VerificationStatus)
		mine, err := s.f.verification.ListMine(s.ctx, s.user.ID)
		s.Require().NoError(err)
		s.Require().Len(mine, 1)
		s.Equal(original.ID, mine[0].ID)
		s.Equal(models.RequestApproved, mine[0].Status)
	})

	s.Run("verified brand page cannot submit again", func() {
		req, err := s.submitBrand(s.shop.ID)
		s.Require().NoError(err)
		_, err = s.f.verification.Approve(s.ctx, s.admin, req.ID)
		s.Require().NoError(err)

		_, err = s.submitBrand(s.shop.ID)
		s.Equal(services.CodePolicy, services.CodeOf(err))
		s.Equal(models.BrandVerified, s.f.loadPage(s.shop.ID).BrandStatus)
		s.True(s.f.loadPage(s.shop.ID).IsVerified)
	})
}

func (s *VerificationServiceSuite) TestResumeRefusedOnceVerified() {
	rejected := s.submitPersonal()
	_, err := s.f.verification.Reject(s.ctx, s.admin, rejected.ID, "blurry")
	s.Require().NoError(err)
	s.approvePersonal()

	_, err = s.f.verification.Resume(s.ctx, s.admin, rejected.ID)
	s.Equal(services.CodePolicy, services.CodeOf(err))
	stored, err := s.f.store.Verifications.GetRequestByID(s.ctx, rejected.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestRejected, stored.Status)
	s.True(s.f.loadUser(s.user.ID).IsVerified)
}

func (s *VerificationServiceSuite) TestDirectGrant() {
	s.Run("synthesizes an approved request", func() {
		req, err := s.f.verification.DirectGrant(s.ctx, s.admin, s.user.ID)
		s.Require().NoError(err)
		s.Equal(models.RequestApproved, req.Status)
		s.Equal(models.RequestPersonal, req.ReqType)
		s.True(s.f.loadUser(s.user.ID).IsVerified)
		s.True(s.f.loadPage(s.main.ID).IsVerified)
	})

	s.Run("approves an existing pending request", func() {
		bob := s.f.user("bob@example.com", models.RoleUser)
		s.f.page(bob.ID, "bobby")
		pending, err := s.f.verification.Submit(s.ctx, bob, models.SubmitVerificationRequest{ReqType: models.RequestPersonal})
		s.Require().NoError(err)

		granted, err := s.f.verification.DirectGrant(s.ctx, s.admin, bob.ID)
		s.Require().NoError(err)
		s.Equal(pending.ID, granted.ID)
		mine, err := s.f.verification.ListMine(s.ctx, bob.ID)
		s.Require().NoError(err)
		s.Len(mine, 1)
	})

	s.Run("unknown user is not found", func() {
		_, err := s.f.verification.DirectGrant(s.ctx, s.admin, "ghost")
		s.Equal(services.CodeNotFound, services.CodeOf(err))
	})
}

func (s *VerificationServiceSuite) TestListFiltersByStatus() {
	s.approvePersonal()
	bob := s.f.user("bob@example.com", models.RoleUser)
	_, err := s.f.verification.Submit(s.ctx, bob, models.SubmitVerificationRequest{ReqType: models.RequestPersonal})
	s.Require().NoError(err)

	all, err := s.f.verification.List(s.ctx, s.admin, nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	pending := models.RequestPending
	onlyPending, err := s.f.verification.List(s.ctx, s.admin, &pending)
	s.Require().NoError(err)
	s.Require().Len(onlyPending, 1)
	s.Equal(bob.ID, onlyPending[0].UserID)
}

// TestApproveRevokeScenario walks a user from sign-up to a revoked personal
// verification and back into the queue.
func (s *VerificationServiceSuite) TestApproveRevokeScenario() {
	personal := s.approvePersonal()
	s.True(s.f.loadPage(s.main.ID).IsVerified)

	brand, err := s.submitBrand(s.shop.ID)
	s.Require().NoError(err)
	_, err = s.f.verification.Approve(s.ctx, s.admin, brand.ID)
	s.Require().NoError(err)
	s.True(s.f.loadPage(s.shop.ID).IsBrand)

	_, err = s.f.verification.Revoke(s.ctx, s.admin, personal.ID, "")
	s.Require().NoError(err)
	s.False(s.f.loadPage(s.main.ID).IsVerified)
	s.False(s.f.loadPage(s.shop.ID).IsBrand)

	_, err = s.f.verification.Resume(s.ctx, s.admin, personal.ID)
	s.Require().NoError(err)
	_, err = s.f.verification.Approve(s.ctx, s.admin, personal.ID)
	s.Require().NoError(err)
	s.True(s.f.loadUser(s.user.ID).IsVerified)
	s.True(s.f.loadPage(s.main.ID).IsVerified)
	s.False(s.f.loadPage(s.shop.ID).IsBrand)

	unread, err := s.f.notifications.UnreadCount(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(int64(4), unread)
}
