package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for any unknown email or
// wrong password, so callers cannot tell which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AccountService manages users: sign-up, sign-in, roles, analytics ids and
// account deletion.
type AccountService struct {
	base
	repos repositories.Set
	pages *PageService
	live  Publisher
}

func NewAccountService(repos repositories.Set, pages *PageService, live Publisher, opts ...Option) *AccountService {
	return &AccountService{
		base:  newBase(opts),
		repos: repos,
		pages: pages,
		live:  live,
	}
}

// Register creates a password account. When a username is supplied it becomes
// the user's first (main) page; the slug is checked before the user is written.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.Page, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username != "" {
		if _, err := s.pages.claimableUsername(ctx, req.Username); err != nil {
			return nil, nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, WrapError(err, "hash password")
	}
	user := s.newUser(email)
	user.PasswordHash = string(hash)
	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrConflict("email is already registered")
		}
		return nil, nil, WrapError(err, "create user")
	}
	user.PasswordHash = ""
	s.logger.Info("user registered", "user_id", user.ID)

	if req.Username == "" {
		return user, nil, nil
	}
	page, err := s.pages.CreatePage(ctx, user.ID, models.CreatePageRequest{Username: req.Username})
	if err != nil {
		if delErr := s.repos.Users.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to roll back user after page error", "user_id", user.ID, "error", delErr)
		}
		return nil, nil, err
	}
	return user, page, nil
}

func (s *AccountService) newUser(email string) *models.User {
	return &models.User{
		ID:                 uuid.NewString(),
		Email:              email,
		Role:               models.RoleUser,
		VerificationStatus: models.VerificationNone,
		CreatedAt:          s.now(),
	}
}

// Authenticate checks a password sign-in and returns the user without its hash.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repos.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, WrapError(err, "load user")
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user.PasswordHash = ""
	return user, nil
}

// FirebaseSignIn resolves a verified Firebase identity to a local user,
// linking an existing email account or creating a new one. It never grants a role.
func (s *AccountService) FirebaseSignIn(ctx context.Context, firebaseUID, email string) (*models.User, error) {
	user, err := s.repos.Users.GetUserByFirebaseUID(ctx, firebaseUID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, WrapError(err, "load user by firebase uid")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrValidation("firebase account has no email")
	}
	user, err = s.repos.Users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.repos.Users.SetFirebaseUID(ctx, user.ID, firebaseUID); err != nil {
			return nil, WrapError(err, "link firebase uid")
		}
		user.PasswordHash = ""
		user.FirebaseUID = firebaseUID
		return user, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, WrapError(err, "load user by email")
	}

	user = s.newUser(email)
	user.FirebaseUID = firebaseUID
	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict("email is already registered")
		}
		return nil, WrapError(err, "create user")
	}
	s.logger.Info("user registered via firebase", "user_id", user.ID)
	return user, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found", "load user")
	}
	return user, nil
}

// SetAnalytics stores the tracking ids and refreshes every live page of the user.
func (s *AccountService) SetAnalytics(ctx context.Context, userID string, req models.UpdateAnalyticsRequest) (*models.User, error) {
	analytics := models.Analytics{
		FacebookPixelID:   strings.TrimSpace(req.FacebookPixelID),
		GoogleAnalyticsID: strings.TrimSpace(req.GoogleAnalyticsID),
	}
	if err := s.repos.Users.SetAnalytics(ctx, userID, analytics); err != nil {
		return nil, notFoundAs(err, "user not found", "update analytics")
	}
	pages, err := s.repos.Pages.GetPagesByUserID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list pages for analytics push", "user_id", userID, "error", err)
	}
	for _, page := range pages {
		logPush(s.logger, "analytics", s.live.Publish(ctx, page.Username), "page_id", page.ID)
	}
	return s.Profile(ctx, userID)
}

// SetRole changes another user's role. Only owners may do it.
func (s *AccountService) SetRole(ctx context.Context, actor models.Actor, userID string, role models.Role) (*models.User, error) {
	if actor.Role != models.RoleOwner {
		return nil, ErrForbidden("owner role required")
	}
	if actor.ID == userID {
		return nil, ErrForbidden("owners cannot change their own role")
	}
	if !role.Valid() {
		return nil, ErrValidation("role must be user, admin or owner")
	}
	if err := s.repos.Users.SetRole(ctx, userID, role); err != nil {
		return nil, notFoundAs(err, "user not found", "set role")
	}
	s.logger.Info("role changed", "user_id", userID, "role", role, "by", actor.ID)
	return s.Profile(ctx, userID)
}

// AssignRole is the provisioning path used by operators outside the HTTP API.
func (s *AccountService) AssignRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrValidation("role must be user, admin or owner")
	}
	user, err := s.repos.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFoundAs(err, "user not found", "load user")
	}
	if err := s.repos.Users.SetRole(ctx, user.ID, role); err != nil {
		return nil, WrapError(err, "set role")
	}
	user.Role = role
	user.PasswordHash = ""
	s.logger.Info("role assigned", "user_id", user.ID, "role", role)
	return user, nil
}

// DeleteAccount removes the user and everything they own, dependents first:
// each page's content then the page, verification requests, notifications and
// finally the user. It stops at the first storage failure.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.repos.Users.GetUserByID(ctx, userID); err != nil {
		return notFoundAs(err, "user not found", "load user")
	}
	pages, err := s.repos.Pages.GetPagesByUserID(ctx, userID)
	if err != nil {
		return WrapError(err, "list pages")
	}
	for _, page := range pages {
		if err := s.repos.Content.DeleteByPageID(ctx, page.ID); err != nil {
			return WrapError(err, "delete page content")
		}
		if err := s.repos.Pages.DeletePage(ctx, page.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return WrapError(err, "delete page")
		}
		logPush(s.logger, "remove", s.live.PublishRemoved(ctx, page.Username), "page_id", page.ID)
	}
	if err := s.repos.Verifications.DeleteByUserID(ctx, userID); err != nil {
		return WrapError(err, "delete verification requests")
	}
	if err := s.repos.Notifications.DeleteByUserID(ctx, userID); err != nil {
		return WrapError(err, "delete notifications")
	}
	if err := s.repos.Users.DeleteUser(ctx, userID); err != nil {
		return notFoundAs(err, "user not found", "delete user")
	}
	s.logger.Info("account deleted", "user_id", userID, "pages", len(pages))
	return nil
}
