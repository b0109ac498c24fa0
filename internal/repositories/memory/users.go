package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

type UserRepository struct {
	mu    sync.RWMutex
	users table[models.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: newTable[models.User]()}
}

func copyUser(u models.User) *models.User {
	u.Leads = slices.Clone(u.Leads)
	return &u
}

func (r *UserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users.docs {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if !r.users.insert(user.ID, *copyUser(*user)) {
		return repositories.ErrDuplicate
	}
	return nil
}

func (r *UserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.PasswordHash = ""
	return copyUser(u), nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return firebaseUID != "" && u.FirebaseUID == firebaseUID })
}

func (r *UserRepository) findOne(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := r.users.filter(match)
	if len(found) == 0 {
		return nil, repositories.ErrNotFound
	}
	return copyUser(found[0]), nil
}

func (r *UserRepository) FindIDsByEmails(_ context.Context, emails []string) ([]string, error) {
	return r.ids(func(u models.User) bool { return slices.Contains(emails, u.Email) }), nil
}

func (r *UserRepository) FindExistingIDs(_ context.Context, ids []string) ([]string, error) {
	return r.ids(func(u models.User) bool { return slices.Contains(ids, u.ID) }), nil
}

func (r *UserRepository) ListUserIDs(_ context.Context) ([]string, error) {
	return r.ids(func(models.User) bool { return true }), nil
}

func (r *UserRepository) ids(match func(models.User) bool) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for _, u := range r.users.filter(match) {
		out = append(out, u.ID)
	}
	return out
}

func (r *UserRepository) SetVerification(_ context.Context, id string, isVerified bool, status models.VerificationStatus) error {
	return r.update(id, func(u *models.User) {
		u.IsVerified = isVerified
		u.VerificationStatus = status
	})
}

func (r *UserRepository) SetRole(_ context.Context, id string, role models.Role) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *UserRepository) SetFirebaseUID(_ context.Context, id, firebaseUID string) error {
	return r.update(id, func(u *models.User) { u.FirebaseUID = firebaseUID })
}

func (r *UserRepository) SetAnalytics(_ context.Context, id string, analytics models.Analytics) error {
	return r.update(id, func(u *models.User) { u.Analytics = analytics })
}

func (r *UserRepository) update(id string, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users.docs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(&u)
	r.users.docs[id] = u
	return nil
}

func (r *UserRepository) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.users.remove(id) {
		return repositories.ErrNotFound
	}
	return nil
}
