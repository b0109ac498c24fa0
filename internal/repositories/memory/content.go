package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/biolink/backend/internal/models"
)

type ContentRepository struct {
	mu        sync.RWMutex
	blocks    table[models.Block]
	events    table[models.Event]
	showcases table[models.Showcase]
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{
		blocks:    newTable[models.Block](),
		events:    newTable[models.Event](),
		showcases: newTable[models.Showcase](),
	}
}

// AddBlock, AddEvent and AddShowcase seed page content; the service itself never writes it.
func (r *ContentRepository) AddBlock(b models.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks.insert(b.ID, b)
}

func (r *ContentRepository) AddEvent(e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events.insert(e.ID, e)
}

func (r *ContentRepository) AddShowcase(s models.Showcase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showcases.insert(s.ID, s)
}

func (r *ContentRepository) GetBlocksByPageID(_ context.Context, pageID string) ([]models.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blocks := r.blocks.filter(func(b models.Block) bool { return b.PageID == pageID })
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })
	return blocks, nil
}

func (r *ContentRepository) GetEventsByPageID(_ context.Context, pageID string) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events.filter(func(e models.Event) bool { return e.PageID == pageID }), nil
}

func (r *ContentRepository) GetShowcasesByPageID(_ context.Context, pageID string) ([]models.Showcase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.showcases.filter(func(s models.Showcase) bool { return s.PageID == pageID }), nil
}

func (r *ContentRepository) DeleteByPageID(_ context.Context, pageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks.filter(func(b models.Block) bool { return b.PageID == pageID }) {
		r.blocks.remove(b.ID)
	}
	for _, e := range r.events.filter(func(e models.Event) bool { return e.PageID == pageID }) {
		r.events.remove(e.ID)
	}
	for _, s := range r.showcases.filter(func(s models.Showcase) bool { return s.PageID == pageID }) {
		r.showcases.remove(s.ID)
	}
	return nil
}
