package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
)

type terminalKey struct{}

// terminalMark records that a step run already told the user how it ended.
type terminalMark struct {
	posted atomic.Bool
}

func withTerminalMark(ctx context.Context) (context.Context, *terminalMark) {
	m := &terminalMark{}
	return context.WithValue(ctx, terminalKey{}, m), m
}

func isTerminal(slot domain.Slot) bool {
	return slot == domain.SlotSaveSuccess || slot == domain.SlotSaveFailure
}

// postNotice delivers evt. SAVE_SUCCESS and SAVE_FAILURE mark the running
// step as reported before delivery, so a later panic never adds a second
// terminal notification. A panicking notifier is logged and swallowed.
func postNotice(ctx context.Context, n domain.Notifier, logger zerolog.Logger, evt domain.NotificationEvent) {
	if isTerminal(evt.Slot) {
		if m, ok := ctx.Value(terminalKey{}).(*terminalMark); ok {
			m.posted.Store(true)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("slot", evt.Slot.String()).Msg("pipeline: notifier panicked")
		}
	}()
	n.Post(ctx, evt)
}
