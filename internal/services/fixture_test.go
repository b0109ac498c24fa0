package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/anonto42/biolink/backend/internal/metrics"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories/memory"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// recordingPublisher captures live pushes instead of delivering them.
type recordingPublisher struct {
	mu      sync.Mutex
	updates []string
	renames [][2]string
	removed []string
	failErr error
}

func (p *recordingPublisher) Publish(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, username)
	return p.failErr
}

func (p *recordingPublisher) PublishByPageID(_ context.Context, pageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, "id:"+pageID)
	return p.failErr
}

func (p *recordingPublisher) PublishRename(_ context.Context, oldUsername, newUsername string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renames = append(p.renames, [2]string{oldUsername, newUsername})
	return p.failErr
}

func (p *recordingPublisher) PublishRemoved(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, username)
	return p.failErr
}

func (p *recordingPublisher) Updates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.updates...)
}

// tickingClock returns strictly increasing times so created_at ordering is deterministic.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	store         *memory.Store
	live          *recordingPublisher
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	pages         *services.PageService
	verification  *services.VerificationService
	notifications *services.NotificationService
	accounts      *services.AccountService
}

func newFixture() *fixture {
	f := &fixture{
		store:    memory.New(),
		live:     &recordingPublisher{},
		registry: prometheus.NewRegistry(),
	}
	f.metrics = metrics.New(f.registry)
	opts := []services.Option{
		services.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		services.WithClock(tickingClock()),
		services.WithMetrics(f.metrics),
	}
	repos := f.store.Set()
	f.notifications = services.NewNotificationService(repos, opts...)
	f.pages = services.NewPageService(repos, f.live, opts...)
	f.verification = services.NewVerificationService(repos, f.notifications, f.live, opts...)
	f.accounts = services.NewAccountService(repos, f.pages, f.live, opts...)
	return f
}

func (f *fixture) user(email string, role models.Role) models.Actor {
	u := &models.User{
		ID:                 uuid.NewString(),
		Email:              email,
		Role:               role,
		VerificationStatus: models.VerificationNone,
		CreatedAt:          time.Now(),
	}
	if err := f.store.Users.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u.Actor()
}

func (f *fixture) page(userID, username string) *models.Page {
	p, err := f.pages.CreatePage(context.Background(), userID, models.CreatePageRequest{Username: username, Name: username})
	if err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) loadPage(id string) *models.Page {
	p, err := f.store.Pages.GetPageByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) loadUser(id string) *models.User {
	u, err := f.store.Users.GetUserByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return u
}
