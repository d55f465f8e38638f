package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRemovesExpiredTempFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old, err := f.temp.Write(ctx, TempFilePrefix+"old"+TempFileExt, []byte("x"))
	require.NoError(t, err)
	fresh, err := f.temp.Write(ctx, TempFilePrefix+"fresh"+TempFileExt, []byte("x"))
	require.NoError(t, err)
	other, err := f.temp.Write(ctx, "unrelated.txt", []byte("x"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	for _, key := range []string{old, other} {
		p, err := f.temp.Path(key)
		require.NoError(t, err)
		require.NoError(t, os.Chtimes(p, past, past))
	}

	s := NewSweeper(f.temp, 24*time.Hour, time.Hour, zerolog.Nop())
	removed, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, filepath.Join(f.temp.BasePath(), old))
	assert.FileExists(t, filepath.Join(f.temp.BasePath(), fresh))
	assert.FileExists(t, filepath.Join(f.temp.BasePath(), other))
}

func TestSweeperDisabled(t *testing.T) {
	f := newFixture(t)
	s := NewSweeper(f.temp, 0, time.Hour, zerolog.Nop())
	assert.False(t, s.Enabled())

	removed, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	s := NewSweeper(f.temp, time.Hour, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
