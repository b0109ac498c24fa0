package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

type ReservedUsernameRepository struct {
	mu      sync.RWMutex
	entries map[string]models.ReservedUsername
}

func NewReservedUsernameRepository() *ReservedUsernameRepository {
	return &ReservedUsernameRepository{entries: make(map[string]models.ReservedUsername)}
}

func (r *ReservedUsernameRepository) IsReserved(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[username]
	return ok, nil
}

func (r *ReservedUsernameRepository) Reserve(_ context.Context, entry *models.ReservedUsername) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.Username]; ok {
		return repositories.ErrDuplicate
	}
	r.entries[entry.Username] = *entry
	return nil
}

func (r *ReservedUsernameRepository) Release(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[username]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.entries, username)
	return nil
}

func (r *ReservedUsernameRepository) ListReserved(_ context.Context) ([]models.ReservedUsername, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ReservedUsername, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
