package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/biolink/backend/internal/metrics"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

// Publisher pushes fresh page state to live viewers. Implementations must be
// safe for concurrent use; a push failure never invalidates the write before it.
type Publisher interface {
	Publish(ctx context.Context, username string) error
	PublishByPageID(ctx context.Context, pageID string) error
	PublishRename(ctx context.Context, oldUsername, newUsername string) error
	PublishRemoved(ctx context.Context, username string) error
}

const (
	minUsernameLength = 4
	maxUsernameLength = 32
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// normalizeUsername validates a slug and returns its stored (lowercase) form.
func normalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if !usernamePattern.MatchString(username) {
		return "", ErrValidation("username may contain only letters, digits, underscore and hyphen")
	}
	if len(username) < minUsernameLength {
		return "", ErrValidation("username must be at least 4 characters")
	}
	if len(username) > maxUsernameLength {
		return "", ErrValidation("username must be at most 32 characters")
	}
	return username, nil
}

// resolveMainPage returns the user's pages oldest first together with the main
// page, repairing the flag when it is missing (oldest page wins) or duplicated
// (oldest flagged page keeps it). Calling it again yields the same main page.
// A user without pages gets a nil main page.
func resolveMainPage(ctx context.Context, repo repositories.PageRepository, userID string) ([]models.Page, *models.Page, error) {
	pages, err := repo.GetPagesByUserID(ctx, userID)
	if err != nil {
		return nil, nil, WrapError(err, "list pages")
	}
	if len(pages) == 0 {
		return pages, nil, nil
	}

	main := -1
	for i := range pages {
		if !pages[i].IsMainPage {
			continue
		}
		if main < 0 {
			main = i
			continue
		}
		if err := repo.SetMainPage(ctx, pages[i].ID, false); err != nil {
			return nil, nil, WrapError(err, "unflag extra main page")
		}
		pages[i].IsMainPage = false
	}
	if main < 0 {
		main = 0
		if err := repo.SetMainPage(ctx, pages[0].ID, true); err != nil {
			return nil, nil, WrapError(err, "flag main page")
		}
		pages[0].IsMainPage = true
	}
	return pages, &pages[main], nil
}

func requireStaff(actor models.Actor) error {
	if !actor.Role.IsStaff() {
		return ErrForbidden("admin role required")
	}
	return nil
}

// notFoundAs maps a repository miss to a domain error and passes other failures through.
func notFoundAs(err error, msg, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound(msg)
	}
	return WrapError(err, op)
}

// logPush records a failed live push; the caller's write already succeeded.
func logPush(logger *slog.Logger, what string, err error, args ...any) {
	if err != nil {
		logger.Warn("live push failed", append([]any{"push", what, "error", err}, args...)...)
	}
}

func boolPtr(v bool) *bool { return &v }

func brandPtr(v models.BrandStatus) *models.BrandStatus { return &v }

// base carries the collaborators every service shares.
type base struct {
	logger  *slog.Logger
	now     func() time.Time
	metrics *metrics.Metrics
}

func newBase(opts []Option) base {
	b := base{
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
		metrics: metrics.Nop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

type Option func(*base)

func WithLogger(logger *slog.Logger) Option {
	return func(b *base) { b.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}
