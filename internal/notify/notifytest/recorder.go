// Package notifytest provides a recording notifier for tests.
package notifytest

import (
	"context"
	"sync"

	"qrquicker/internal/domain"
)

// Recorder records every posted event in order.
type Recorder struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Post(_ context.Context, evt domain.NotificationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []domain.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Slots returns the slots of the recorded events in posting order.
func (r *Recorder) Slots() []domain.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Slot, len(r.events))
	for i, evt := range r.events {
		out[i] = evt.Slot
	}
	return out
}

// Count returns how many events were posted to slot.
func (r *Recorder) Count(slot domain.Slot) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evt := range r.events {
		if evt.Slot == slot {
			n++
		}
	}
	return n
}

// Last returns the most recent event posted to slot.
func (r *Recorder) Last(slot domain.Slot) (domain.NotificationEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Slot == slot {
			return r.events[i], true
		}
	}
	return domain.NotificationEvent{}, false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var _ domain.Notifier = (*Recorder)(nil)
