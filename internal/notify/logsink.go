package notify

import (
	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
)

// LogSubscriber writes every posted notification to logger. Failure slots
// are logged at warn level.
func LogSubscriber(logger zerolog.Logger) Subscriber {
	return func(evt domain.NotificationEvent) {
		e := logger.Info()
		if evt.Slot == domain.SlotSaveFailure || evt.Slot == domain.SlotDecodeFailure {
			e = logger.Warn()
		}
		e = e.Str("slot", evt.Slot.String()).Str("title", evt.Title)
		if evt.Action.Kind != domain.ActionNone {
			e = e.Str("action", string(evt.Action.Kind)).Str("uri", evt.Action.URI)
		}
		e.Msg("notify: posted")
	}
}
