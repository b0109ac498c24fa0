package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

type NotificationRepository struct {
	mu            sync.RWMutex
	notifications table[models.Notification]
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: newTable[models.Notification]()}
}

func (r *NotificationRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.notifications.insert(n.ID, *n) {
		return repositories.ErrDuplicate
	}
	return nil
}

func (r *NotificationRepository) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	for i := range notifications {
		if err := r.CreateNotification(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *NotificationRepository) GetByRecipientID(_ context.Context, userID string, limit int64) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.notifications.filter(func(n models.Notification) bool { return n.UserID == userID })
	slices.Reverse(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	return r.count(func(n models.Notification) bool { return n.UserID == userID && !n.Read }), nil
}

func (r *NotificationRepository) CountReadByCampaignID(_ context.Context, campaignID string) (int64, error) {
	return r.count(func(n models.Notification) bool { return n.CampaignID == campaignID && n.Read }), nil
}

func (r *NotificationRepository) count(match func(models.Notification) bool) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.notifications.filter(match)))
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications.docs[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotFound
	}
	n.Read = true
	r.notifications.docs[id] = n
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notifications.docs {
		if n.UserID == userID {
			n.Read = true
			r.notifications.docs[id] = n
		}
	}
	return nil
}

func (r *NotificationRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications.filter(func(n models.Notification) bool { return n.UserID == userID }) {
		r.notifications.remove(n.ID)
	}
	return nil
}
