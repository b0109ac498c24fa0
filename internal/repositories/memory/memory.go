// Package memory holds in-process implementations of the repositories.
// They back the test suites and the STORE_BACKEND=memory development mode.
package memory

import (
	"github.com/anonto42/biolink/backend/internal/repositories"
)

// Store exposes the concrete repositories so tests can seed page content.
type Store struct {
	Users         *UserRepository
	Pages         *PageRepository
	Content       *ContentRepository
	Verifications *VerificationRepository
	Notifications *NotificationRepository
	Campaigns     *CampaignRepository
	Reserved      *ReservedUsernameRepository
}

func New() *Store {
	return &Store{
		Users:         NewUserRepository(),
		Pages:         NewPageRepository(),
		Content:       NewContentRepository(),
		Verifications: NewVerificationRepository(),
		Notifications: NewNotificationRepository(),
		Campaigns:     NewCampaignRepository(),
		Reserved:      NewReservedUsernameRepository(),
	}
}

func (s *Store) Set() repositories.Set {
	return repositories.Set{
		Users:         s.Users,
		Pages:         s.Pages,
		Content:       s.Content,
		Verifications: s.Verifications,
		Notifications: s.Notifications,
		Campaigns:     s.Campaigns,
		Reserved:      s.Reserved,
	}
}

// table keeps documents in insertion order so ties on timestamps sort stably.
type table[T any] struct {
	order []string
	docs  map[string]T
}

func newTable[T any]() table[T] {
	return table[T]{docs: make(map[string]T)}
}

func (t *table[T]) insert(id string, doc T) bool {
	if _, ok := t.docs[id]; ok {
		return false
	}
	t.order = append(t.order, id)
	t.docs[id] = doc
	return true
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.docs[id]; !ok {
		return false
	}
	delete(t.docs, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) filter(match func(T) bool) []T {
	out := []T{}
	for _, id := range t.order {
		if doc := t.docs[id]; match(doc) {
			out = append(out, doc)
		}
	}
	return out
}
