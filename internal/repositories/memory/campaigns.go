package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

type CampaignRepository struct {
	mu        sync.RWMutex
	campaigns table[models.NotificationCampaign]
}

func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{campaigns: newTable[models.NotificationCampaign]()}
}

func (r *CampaignRepository) CreateCampaign(_ context.Context, c *models.NotificationCampaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	stored.RecipientIDs = slices.Clone(c.RecipientIDs)
	if !r.campaigns.insert(c.ID, stored) {
		return repositories.ErrDuplicate
	}
	return nil
}

func (r *CampaignRepository) GetCampaignByID(_ context.Context, id string) (*models.NotificationCampaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c.RecipientIDs = slices.Clone(c.RecipientIDs)
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(_ context.Context, limit int64) ([]models.NotificationCampaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.campaigns.filter(func(models.NotificationCampaign) bool { return true })
	slices.Reverse(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].RecipientIDs = nil
	}
	return out, nil
}
