package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"qrquicker/internal/metrics"
	"qrquicker/internal/storage"
)

// Sweeper deletes generated temp files once they are older than the
// retention period. Published images are unaffected: the save step copies
// the image into the gallery.
type Sweeper struct {
	store     *storage.FileStore
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSweeper returns a sweeper. A retention of zero keeps temp files forever.
func NewSweeper(store *storage.FileStore, retention, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger.With().Str("component", "sweeper").Logger(),
		now:       time.Now,
	}
}

// Enabled reports whether the sweeper removes anything.
func (s *Sweeper) Enabled() bool {
	return s.retention > 0
}

// SweepOnce removes expired temp files and returns how many were deleted.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	removed, err := s.store.Sweep(ctx, TempFilePattern, s.now().Add(-s.retention))
	if removed > 0 {
		metrics.TempFilesSwept.Add(float64(removed))
		s.logger.Info().Int("removed", removed).Msg("sweeper: expired temp files removed")
	}
	return removed, err
}

// Run sweeps once immediately and then every interval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.Enabled() || s.interval <= 0 {
		s.logger.Info().Msg("sweeper: disabled")
		<-ctx.Done()
		return nil
	}

	if _, err := s.SweepOnce(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("sweeper: sweep failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("sweeper: sweep failed")
			}
		}
	}
}
