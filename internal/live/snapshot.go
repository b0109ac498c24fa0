package live

import (
	"context"
	"strings"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// SnapshotBuilder assembles the public view of a page from its collections.
type SnapshotBuilder struct {
	pages   repositories.PageRepository
	content repositories.ContentRepository
	users   repositories.UserRepository
}

func NewSnapshotBuilder(repos repositories.Set) *SnapshotBuilder {
	return &SnapshotBuilder{pages: repos.Pages, content: repos.Content, users: repos.Users}
}

// ByUsername loads the page for username and builds its snapshot.
// It returns repositories.ErrNotFound when no page has that username.
func (b *SnapshotBuilder) ByUsername(ctx context.Context, username string) (*models.PageSnapshot, error) {
	page, err := b.pages.GetPageByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, page)
}

// Build fetches the page's blocks, events, showcases and the owner's analytics
// ids concurrently.
func (b *SnapshotBuilder) Build(ctx context.Context, page *models.Page) (*models.PageSnapshot, error) {
	snap := &models.PageSnapshot{Page: *page}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		blocks, err := b.content.GetBlocksByPageID(ctx, page.ID)
		snap.Blocks = blocks
		return err
	})
	g.Go(func() error {
		events, err := b.content.GetEventsByPageID(ctx, page.ID)
		snap.Events = events
		return err
	})
	g.Go(func() error {
		showcases, err := b.content.GetShowcasesByPageID(ctx, page.ID)
		snap.Showcases = showcases
		return err
	})
	g.Go(func() error {
		owner, err := b.users.GetUserByID(ctx, page.UserID)
		if err != nil {
			return err
		}
		snap.Analytics = owner.Analytics
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
