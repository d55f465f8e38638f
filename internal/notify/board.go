// Package notify implements the notification sink the pipeline posts to.
//
// A Board keeps at most one active notification per slot: posting to a slot
// replaces whatever was shown there. Subscribers see every post, including
// the ones that are later replaced.
package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/metrics"
)

// Subscriber is a callback invoked on every post.
type Subscriber func(domain.NotificationEvent)

// Board is an in-process, slot keyed notification store. It is safe for
// concurrent use.
type Board struct {
	mu          sync.RWMutex
	active      map[domain.Slot]domain.NotificationEvent
	subscribers []Subscriber
	logger      zerolog.Logger
	now         func() time.Time
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithLogger reports panicking subscribers to logger.
func WithLogger(logger zerolog.Logger) BoardOption {
	return func(b *Board) {
		b.logger = logger.With().Str("component", "notify").Logger()
	}
}

// NewBoard creates an empty board.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{
		active: make(map[domain.Slot]domain.NotificationEvent),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for all future posts.
func (b *Board) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Post shows evt in its slot, replacing the previous notification there.
// Events with an unknown slot are dropped.
func (b *Board) Post(_ context.Context, evt domain.NotificationEvent) {
	if !evt.Slot.Valid() {
		return
	}
	if evt.PostedAt.IsZero() {
		evt.PostedAt = b.now()
	}

	b.mu.Lock()
	b.active[evt.Slot] = evt
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	metrics.NotificationsPosted.WithLabelValues(evt.Slot.String()).Inc()

	for _, fn := range subs {
		b.dispatch(fn, evt)
	}
}

// dispatch isolates a subscriber: a panic is logged and the remaining
// subscribers still run.
func (b *Board) dispatch(fn Subscriber, evt domain.NotificationEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("slot", evt.Slot.String()).Msg("notify: subscriber panicked")
		}
	}()
	fn(evt)
}

// Get returns the notification currently shown in slot.
func (b *Board) Get(slot domain.Slot) (domain.NotificationEvent, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	evt, ok := b.active[slot]
	return evt, ok
}

// Active returns the visible notifications ordered by slot id.
func (b *Board) Active() []domain.NotificationEvent {
	b.mu.RLock()
	out := make([]domain.NotificationEvent, 0, len(b.active))
	for _, evt := range b.active {
		out = append(out, evt)
	}
	b.mu.RUnlock()

	slices.SortFunc(out, func(a, c domain.NotificationEvent) int {
		return int(a.Slot) - int(c.Slot)
	})
	return out
}

// Dismiss clears slot and reports whether anything was shown there.
func (b *Board) Dismiss(slot domain.Slot) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.active[slot]; !ok {
		return false
	}
	delete(b.active, slot)
	return true
}

var _ domain.Notifier = (*Board)(nil)
