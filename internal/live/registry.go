// Package live keeps the process-wide map of viewers watching a public page
// and pushes fresh page state to them after every write.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/anonto42/biolink/backend/internal/metrics"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
)

const (
	MessagePageUpdate  = "page_update"
	MessagePageRemoved = "page_removed"
	MessagePageRenamed = "page_renamed"
)

// ErrClosed is returned by Subscribe once the registry has been shut down.
var ErrClosed = errors.New("live registry closed")

// Message is the payload delivered to a subscriber channel.
type Message struct {
	Type      string               `json:"type"`
	Username  string               `json:"username"`
	RenamedTo string               `json:"renamed_to,omitempty"`
	Snapshot  *models.PageSnapshot `json:"snapshot,omitempty"`
}

// Channel is one live viewer. Send may block up to the channel's own deadline.
type Channel interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Registry maps lowercase usernames to their subscribed channels.
type Registry struct {
	mu     sync.Mutex
	subs   map[string]map[Channel]struct{}
	closed bool

	snapshots *SnapshotBuilder
	pages     repositories.PageRepository
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewRegistry(snapshots *SnapshotBuilder, pages repositories.PageRepository, logger *slog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		subs:      make(map[string]map[Channel]struct{}),
		snapshots: snapshots,
		pages:     pages,
		logger:    logger,
		metrics:   m,
	}
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *Registry) Subscribe(username string, ch Channel) error {
	k := key(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	set, ok := r.subs[k]
	if !ok {
		set = make(map[Channel]struct{})
		r.subs[k] = set
	}
	if _, dup := set[ch]; !dup {
		set[ch] = struct{}{}
		r.metrics.LiveSubscribers.Inc()
	}
	return nil
}

// Unsubscribe removes ch and drops the username once nobody is watching it.
func (r *Registry) Unsubscribe(username string, ch Channel) {
	k := key(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.subs[k]
	if !ok {
		return
	}
	if _, ok := set[ch]; ok {
		delete(set, ch)
		r.metrics.LiveSubscribers.Dec()
	}
	if len(set) == 0 {
		delete(r.subs, k)
	}
}

func (r *Registry) SubscriberCount(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[key(username)])
}

// channels copies the subscriber list so sends happen outside the lock.
func (r *Registry) channels(username string) []Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.subs[username]
	out := make([]Channel, 0, len(set))
	for ch := range set {
		out = append(out, ch)
	}
	return out
}

// Publish recomputes the page snapshot and sends it to every viewer of username.
// With no viewers it does nothing.
func (r *Registry) Publish(ctx context.Context, username string) error {
	k := key(username)
	chans := r.channels(k)
	if len(chans) == 0 {
		return nil
	}
	msg, err := r.current(ctx, k)
	if err != nil {
		return err
	}
	r.deliver(ctx, chans, msg)
	return nil
}

// SendSnapshot pushes the current state of username to ch alone. Other
// viewers of the same page are not touched.
func (r *Registry) SendSnapshot(ctx context.Context, username string, ch Channel) error {
	msg, err := r.current(ctx, key(username))
	if err != nil {
		return err
	}
	r.deliver(ctx, []Channel{ch}, msg)
	return nil
}

// current builds the message describing the page behind k, or its removal.
func (r *Registry) current(ctx context.Context, k string) (Message, error) {
	snap, err := r.snapshots.ByUsername(ctx, k)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Message{Type: MessagePageRemoved, Username: k}, nil
		}
		return Message{}, fmt.Errorf("build snapshot for %s: %w", k, err)
	}
	return Message{Type: MessagePageUpdate, Username: k, Snapshot: snap}, nil
}

func (r *Registry) PublishByPageID(ctx context.Context, pageID string) error {
	page, err := r.pages.GetPageByID(ctx, pageID)
	if err != nil {
		return fmt.Errorf("load page %s: %w", pageID, err)
	}
	return r.Publish(ctx, page.Username)
}

// PublishRename tells viewers of the old slug where the page went, then
// refreshes viewers of the new one.
func (r *Registry) PublishRename(ctx context.Context, oldUsername, newUsername string) error {
	from, to := key(oldUsername), key(newUsername)
	if chans := r.channels(from); len(chans) > 0 {
		r.deliver(ctx, chans, Message{Type: MessagePageRenamed, Username: from, RenamedTo: to})
	}
	return r.Publish(ctx, to)
}

func (r *Registry) PublishRemoved(ctx context.Context, username string) error {
	k := key(username)
	if chans := r.channels(k); len(chans) > 0 {
		r.deliver(ctx, chans, Message{Type: MessagePageRemoved, Username: k})
	}
	return nil
}

// deliver sends msg to each channel. A failing channel is logged and skipped.
func (r *Registry) deliver(ctx context.Context, chans []Channel, msg Message) {
	for _, ch := range chans {
		if err := ch.Send(ctx, msg); err != nil {
			r.metrics.PushFailed()
			r.logger.Warn("live send failed", "username", msg.Username, "type", msg.Type, "error", err)
			continue
		}
		r.metrics.PushDelivered()
	}
}

// Close drops every subscription and closes the channels. Later Subscribe
// calls fail with ErrClosed; publishes become no-ops.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	var all []Channel
	for _, set := range r.subs {
		for ch := range set {
			all = append(all, ch)
		}
	}
	r.subs = make(map[string]map[Channel]struct{})
	r.metrics.LiveSubscribers.Set(0)
	r.mu.Unlock()

	var errs []error
	for _, ch := range all {
		if err := ch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.logger.Info("live registry closed", "channels", len(all))
	return errors.Join(errs...)
}
