package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

type PageRepository struct {
	mu    sync.RWMutex
	pages table[models.Page]
}

func NewPageRepository() *PageRepository {
	return &PageRepository{pages: newTable[models.Page]()}
}

func (r *PageRepository) CreatePage(_ context.Context, page *models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pages.docs {
		if p.Username == page.Username {
			return repositories.ErrDuplicate
		}
	}
	if !r.pages.insert(page.ID, *page) {
		return repositories.ErrDuplicate
	}
	return nil
}

func (r *PageRepository) GetPageByID(_ context.Context, id string) (*models.Page, error) {
	return r.findOne(func(p models.Page) bool { return p.ID == id })
}

func (r *PageRepository) GetOwnedPage(_ context.Context, id, userID string) (*models.Page, error) {
	return r.findOne(func(p models.Page) bool { return p.ID == id && p.UserID == userID })
}

func (r *PageRepository) GetPageByUsername(_ context.Context, username string) (*models.Page, error) {
	return r.findOne(func(p models.Page) bool { return p.Username == username })
}

func (r *PageRepository) findOne(match func(models.Page) bool) (*models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := r.pages.filter(match)
	if len(found) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &found[0], nil
}

func (r *PageRepository) GetPagesByUserID(_ context.Context, userID string) ([]models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pages := r.pages.filter(func(p models.Page) bool { return p.UserID == userID })
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].CreatedAt.Before(pages[j].CreatedAt) })
	return pages, nil
}

func (r *PageRepository) CountPagesByUserID(ctx context.Context, userID string) (int64, error) {
	pages, _ := r.GetPagesByUserID(ctx, userID)
	return int64(len(pages)), nil
}

func (r *PageRepository) HasVerifiedPage(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages.filter(func(p models.Page) bool { return p.UserID == userID && p.IsVerified })) > 0, nil
}

func (r *PageRepository) SetMainPage(_ context.Context, id string, isMain bool) error {
	return r.update(id, func(p *models.Page) { p.IsMainPage = isMain })
}

func (r *PageRepository) SetUsername(_ context.Context, id, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pages.docs {
		if p.Username == username && p.ID != id {
			return repositories.ErrDuplicate
		}
	}
	return r.updateLocked(id, func(p *models.Page) { p.Username = username })
}

func (r *PageRepository) UpdateAttributes(_ context.Context, id string, attrs models.PageAttributes) error {
	return r.update(id, func(p *models.Page) {
		if attrs.Name != nil {
			p.Name = *attrs.Name
		}
		if attrs.Bio != nil {
			p.Bio = *attrs.Bio
		}
		if attrs.Avatar != nil {
			p.Avatar = *attrs.Avatar
		}
		if attrs.Cover != nil {
			p.Cover = *attrs.Cover
		}
		if attrs.Theme != nil {
			p.Theme = *attrs.Theme
		}
		if attrs.SEO != nil {
			p.SEO = *attrs.SEO
		}
	})
}

func (r *PageRepository) SetVerification(_ context.Context, id string, v models.PageVerification) error {
	return r.update(id, func(p *models.Page) {
		if v.IsVerified != nil {
			p.IsVerified = *v.IsVerified
		}
		if v.IsBrand != nil {
			p.IsBrand = *v.IsBrand
		}
		if v.BrandStatus != nil {
			p.BrandStatus = *v.BrandStatus
		}
	})
}

func (r *PageRepository) update(id string, apply func(*models.Page)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(id, apply)
}

func (r *PageRepository) updateLocked(id string, apply func(*models.Page)) error {
	p, ok := r.pages.docs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(&p)
	r.pages.docs[id] = p
	return nil
}

func (r *PageRepository) DeletePage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pages.remove(id) {
		return repositories.ErrNotFound
	}
	return nil
}
