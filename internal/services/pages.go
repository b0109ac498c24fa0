package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/google/uuid"
)

// PageService owns the user/page relationship: the main-page invariant,
// username uniqueness and ownership-checked page mutations.
type PageService struct {
	base
	pages    repositories.PageRepository
	content  repositories.ContentRepository
	reserved repositories.ReservedUsernameRepository
	live     Publisher
}

func NewPageService(repos repositories.Set, live Publisher, opts ...Option) *PageService {
	return &PageService{
		base:     newBase(opts),
		pages:    repos.Pages,
		content:  repos.Content,
		reserved: repos.Reserved,
		live:     live,
	}
}

// ListPages returns the user's pages oldest first and guarantees exactly one
// of them is flagged main.
func (s *PageService) ListPages(ctx context.Context, userID string) ([]models.Page, error) {
	pages, _, err := resolveMainPage(ctx, s.pages, userID)
	return pages, err
}

// MainPage returns the user's main page, repairing the flag if needed.
func (s *PageService) MainPage(ctx context.Context, userID string) (*models.Page, error) {
	_, main, err := resolveMainPage(ctx, s.pages, userID)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, ErrNotFound("user has no pages")
	}
	return main, nil
}

func (s *PageService) CreatePage(ctx context.Context, userID string, req models.CreatePageRequest) (*models.Page, error) {
	username, err := s.claimableUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	count, err := s.pages.CountPagesByUserID(ctx, userID)
	if err != nil {
		return nil, WrapError(err, "count pages")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = username
	}
	page := &models.Page{
		ID:          uuid.NewString(),
		UserID:      userID,
		Username:    username,
		Name:        name,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		Cover:       req.Cover,
		IsMainPage:  count == 0,
		BrandStatus: models.BrandNone,
		CreatedAt:   s.now(),
	}
	if err := s.pages.CreatePage(ctx, page); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict("username is already taken")
		}
		return nil, WrapError(err, "create page")
	}
	s.logger.Info("page created", "page_id", page.ID, "user_id", userID, "username", username, "main", page.IsMainPage)
	logPush(s.logger, "create", s.live.Publish(ctx, username), "page_id", page.ID)
	return page, nil
}

func (s *PageService) UpdatePage(ctx context.Context, pageID, userID string, attrs models.PageAttributes) (*models.Page, error) {
	page, err := s.pages.GetOwnedPage(ctx, pageID, userID)
	if err != nil {
		return nil, notFoundAs(err, "page not found", "load page")
	}
	if attrs.Empty() {
		return page, nil
	}
	if err := s.pages.UpdateAttributes(ctx, pageID, attrs); err != nil {
		return nil, notFoundAs(err, "page not found", "update page")
	}
	updated, err := s.pages.GetPageByID(ctx, pageID)
	if err != nil {
		return nil, notFoundAs(err, "page not found", "reload page")
	}
	logPush(s.logger, "update", s.live.Publish(ctx, updated.Username), "page_id", pageID)
	return updated, nil
}

// RenameUsername moves a page to a new slug. Viewers of the old slug get a
// rename notice, viewers of the new slug a fresh snapshot.
func (s *PageService) RenameUsername(ctx context.Context, pageID, userID, newUsername string) (*models.Page, error) {
	page, err := s.pages.GetOwnedPage(ctx, pageID, userID)
	if err != nil {
		return nil, notFoundAs(err, "page not found", "load page")
	}
	username, err := normalizeUsername(newUsername)
	if err != nil {
		return nil, err
	}
	if username == page.Username {
		return page, nil
	}
	if _, err := s.claimableUsername(ctx, username); err != nil {
		return nil, err
	}
	if err := s.pages.SetUsername(ctx, pageID, username); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict("username is already taken")
		}
		return nil, notFoundAs(err, "page not found", "rename page")
	}

	old := page.Username
	page.Username = username
	s.logger.Info("page renamed", "page_id", pageID, "from", old, "to", username)
	logPush(s.logger, "rename", s.live.PublishRename(ctx, old, username), "page_id", pageID)
	return page, nil
}

// DeletePage removes a non-main page and then its blocks, events and showcases.
// The cleanup is ordered but not atomic: a failure leaves the page in place
// with part of its content already gone.
func (s *PageService) DeletePage(ctx context.Context, pageID, userID string) error {
	page, err := s.pages.GetOwnedPage(ctx, pageID, userID)
	if err != nil {
		return notFoundAs(err, "page not found", "load page")
	}
	_, main, err := resolveMainPage(ctx, s.pages, userID)
	if err != nil {
		return err
	}
	if page.IsMainPage || (main != nil && main.ID == page.ID) {
		return ErrForbidden("the main page cannot be deleted")
	}

	if err := s.content.DeleteByPageID(ctx, pageID); err != nil {
		return WrapError(err, "delete page content")
	}
	if err := s.pages.DeletePage(ctx, pageID); err != nil {
		return notFoundAs(err, "page not found", "delete page")
	}
	s.logger.Info("page deleted", "page_id", pageID, "user_id", userID, "username", page.Username)
	logPush(s.logger, "remove", s.live.PublishRemoved(ctx, page.Username), "page_id", pageID)
	return nil
}

// CheckUsername reports whether a slug can be claimed right now.
func (s *PageService) CheckUsername(ctx context.Context, raw string) (models.UsernameAvailability, error) {
	if _, err := s.claimableUsername(ctx, raw); err != nil {
		switch CodeOf(err) {
		case CodeValidation:
			return models.UsernameAvailability{Reason: "invalid"}, nil
		case CodeConflict:
			reason := "taken"
			if errors.Is(err, errUsernameReserved) {
				reason = "reserved"
			}
			return models.UsernameAvailability{Reason: reason}, nil
		}
		return models.UsernameAvailability{}, err
	}
	return models.UsernameAvailability{Available: true}, nil
}

var errUsernameReserved = ErrConflict("username is reserved")

// claimableUsername normalizes raw and checks it is neither reserved nor taken.
// The unique index on pages.username still arbitrates concurrent claims.
func (s *PageService) claimableUsername(ctx context.Context, raw string) (string, error) {
	username, err := normalizeUsername(raw)
	if err != nil {
		return "", err
	}
	reserved, err := s.reserved.IsReserved(ctx, username)
	if err != nil {
		return "", WrapError(err, "check reserved usernames")
	}
	if reserved {
		return "", errUsernameReserved
	}
	_, err = s.pages.GetPageByUsername(ctx, username)
	switch {
	case err == nil:
		return "", ErrConflict("username is already taken")
	case !errors.Is(err, repositories.ErrNotFound):
		return "", WrapError(err, "check username")
	}
	return username, nil
}

// ReserveUsername blocks a slug for future claims. Pages already using it keep it.
func (s *PageService) ReserveUsername(ctx context.Context, actor models.Actor, req models.ReserveUsernameRequest) (*models.ReservedUsername, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	entry := &models.ReservedUsername{Username: username, Comment: req.Comment, CreatedAt: s.now()}
	if err := s.reserved.Reserve(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict("username is already reserved")
		}
		return nil, WrapError(err, "reserve username")
	}
	return entry, nil
}

func (s *PageService) ReleaseUsername(ctx context.Context, actor models.Actor, username string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if err := s.reserved.Release(ctx, strings.ToLower(username)); err != nil {
		return notFoundAs(err, "username is not reserved", "release username")
	}
	return nil
}

func (s *PageService) ListReserved(ctx context.Context, actor models.Actor) ([]models.ReservedUsername, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.reserved.ListReserved(ctx)
}

// SeedReserved reserves the given slugs, skipping ones already present.
func (s *PageService) SeedReserved(ctx context.Context, usernames []string) error {
	for _, u := range usernames {
		entry := &models.ReservedUsername{Username: strings.ToLower(u), Comment: "System reserved", CreatedAt: s.now()}
		if err := s.reserved.Reserve(ctx, entry); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return WrapError(err, "seed reserved username "+u)
		}
	}
	return nil
}
