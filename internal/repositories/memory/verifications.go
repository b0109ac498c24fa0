package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

type VerificationRepository struct {
	mu   sync.RWMutex
	reqs table[models.VerificationRequest]
}

func NewVerificationRepository() *VerificationRepository {
	return &VerificationRepository{reqs: newTable[models.VerificationRequest]()}
}

func copyRequest(req models.VerificationRequest) models.VerificationRequest {
	req.Applicant.SocialLinks = slices.Clone(req.Applicant.SocialLinks)
	return req
}

func (r *VerificationRepository) CreateRequest(_ context.Context, req *models.VerificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.reqs.insert(req.ID, copyRequest(*req)) {
		return repositories.ErrDuplicate
	}
	return nil
}

func (r *VerificationRepository) GetRequestByID(_ context.Context, id string) (*models.VerificationRequest, error) {
	return r.findOne(func(q models.VerificationRequest) bool { return q.ID == id })
}

func (r *VerificationRepository) FindPending(_ context.Context, userID string, reqType models.RequestType, pageID string) (*models.VerificationRequest, error) {
	return r.findOne(func(q models.VerificationRequest) bool {
		return q.UserID == userID && q.ReqType == reqType && q.PageID == pageID && q.Status == models.RequestPending
	})
}

func (r *VerificationRepository) findOne(match func(models.VerificationRequest) bool) (*models.VerificationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := r.reqs.filter(match)
	if len(found) == 0 {
		return nil, repositories.ErrNotFound
	}
	req := copyRequest(found[0])
	return &req, nil
}

func (r *VerificationRepository) ListRequests(_ context.Context, status *models.RequestStatus, limit int64) ([]models.VerificationRequest, error) {
	reqs := r.newestFirst(func(q models.VerificationRequest) bool { return status == nil || q.Status == *status })
	if limit > 0 && int64(len(reqs)) > limit {
		reqs = reqs[:limit]
	}
	return reqs, nil
}

func (r *VerificationRepository) ListRequestsByUserID(_ context.Context, userID string) ([]models.VerificationRequest, error) {
	return r.newestFirst(func(q models.VerificationRequest) bool { return q.UserID == userID }), nil
}

func (r *VerificationRepository) newestFirst(match func(models.VerificationRequest) bool) []models.VerificationRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reqs := r.reqs.filter(match)
	slices.Reverse(reqs)
	for i := range reqs {
		reqs[i] = copyRequest(reqs[i])
	}
	return reqs
}

func (r *VerificationRepository) SetStatus(_ context.Context, id string, status models.RequestStatus, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs.docs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.Status = status
	req.RejectionReason = reason
	req.UpdatedAt = at
	r.reqs.docs[id] = req
	return nil
}

func (r *VerificationRepository) CancelApprovedBrand(_ context.Context, userID, reason string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, req := range r.reqs.docs {
		if req.UserID != userID || req.ReqType != models.RequestBrand || req.Status != models.RequestApproved {
			continue
		}
		req.Status = models.RequestCancelled
		req.RejectionReason = reason
		req.UpdatedAt = at
		r.reqs.docs[id] = req
		n++
	}
	return n, nil
}

func (r *VerificationRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.reqs.filter(func(q models.VerificationRequest) bool { return q.UserID == userID }) {
		r.reqs.remove(req.ID)
	}
	return nil
}
