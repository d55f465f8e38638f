package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Slot is a fixed notification channel. Posting to a slot replaces the
// notification currently shown in it.
type Slot int

const (
	SlotSaving Slot = iota
	SlotSaveSuccess
	SlotSaveFailure
	SlotDecodeFailure
)

// Slots lists every slot in id order.
var Slots = []Slot{SlotSaving, SlotSaveSuccess, SlotSaveFailure, SlotDecodeFailure}

func (s Slot) String() string {
	switch s {
	case SlotSaving:
		return "SAVING"
	case SlotSaveSuccess:
		return "SAVE_SUCCESS"
	case SlotSaveFailure:
		return "SAVE_FAILURE"
	case SlotDecodeFailure:
		return "DECODE_FAILURE"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Valid reports whether s is one of the known slots.
func (s Slot) Valid() bool {
	return s >= SlotSaving && s <= SlotDecodeFailure
}

// ParseSlot accepts either the slot name or its numeric id.
func ParseSlot(v string) (Slot, error) {
	v = strings.TrimSpace(v)
	for _, s := range Slots {
		if strings.EqualFold(v, s.String()) || v == fmt.Sprint(int(s)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, v)
}

// ActionKind names what happens when a notification is activated.
type ActionKind string

const (
	ActionNone        ActionKind = ""
	ActionOpenGallery ActionKind = "open_gallery"
)

// Action is the tap target of a notification.
type Action struct {
	Kind ActionKind `json:"kind,omitempty"`
	URI  string     `json:"uri,omitempty"`
}

// NotificationEvent is a user-visible notification.
type NotificationEvent struct {
	Slot     Slot      `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Action   Action    `json:"action"`
	PostedAt time.Time `json:"posted_at"`
}

// Notifier receives notification events. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Post(ctx context.Context, evt NotificationEvent)
}
