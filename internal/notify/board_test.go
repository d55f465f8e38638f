package notify

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrquicker/internal/domain"
)

func TestBoardPostReplacesPerSlot(t *testing.T) {
	b := NewBoard()
	ctx := context.Background()

	b.Post(ctx, domain.NotificationEvent{Slot: domain.SlotSaving, Title: "first"})
	b.Post(ctx, domain.NotificationEvent{Slot: domain.SlotSaving, Title: "second"})
	b.Post(ctx, domain.NotificationEvent{Slot: domain.SlotSaveFailure, Title: "failed"})

	active := b.Active()
	require.Len(t, active, 2)
	assert.Equal(t, domain.SlotSaving, active[0].Slot)
	assert.Equal(t, "second", active[0].Title)
	assert.Equal(t, domain.SlotSaveFailure, active[1].Slot)
	assert.False(t, active[0].PostedAt.IsZero())
}

func TestBoardActiveIsOrderedBySlot(t *testing.T) {
	b := NewBoard()
	ctx := context.Background()
	for _, s := range []domain.Slot{domain.SlotDecodeFailure, domain.SlotSaving, domain.SlotSaveSuccess} {
		b.Post(ctx, domain.NotificationEvent{Slot: s})
	}

	var got []domain.Slot
	for _, evt := range b.Active() {
		got = append(got, evt.Slot)
	}
	assert.Equal(t, []domain.Slot{domain.SlotSaving, domain.SlotSaveSuccess, domain.SlotDecodeFailure}, got)
}

func TestBoardPostDispatchesToSubscribers(t *testing.T) {
	b := NewBoard()
	var received []domain.NotificationEvent
	b.Subscribe(func(evt domain.NotificationEvent) {
		received = append(received, evt)
	})

	b.Post(context.Background(), domain.NotificationEvent{Slot: domain.SlotSaving})
	b.Post(context.Background(), domain.NotificationEvent{Slot: domain.SlotSaving})

	assert.Len(t, received, 2)
}

func TestBoardPostDropsUnknownSlot(t *testing.T) {
	b := NewBoard()
	b.Post(context.Background(), domain.NotificationEvent{Slot: domain.Slot(9)})
	assert.Empty(t, b.Active())
}

func TestBoardDismiss(t *testing.T) {
	b := NewBoard()
	b.Post(context.Background(), domain.NotificationEvent{Slot: domain.SlotSaveSuccess})

	assert.True(t, b.Dismiss(domain.SlotSaveSuccess))
	assert.False(t, b.Dismiss(domain.SlotSaveSuccess))
	_, ok := b.Get(domain.SlotSaveSuccess)
	assert.False(t, ok)
}

func TestBoardConcurrentPosts(t *testing.T) {
	b := NewBoard()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Post(context.Background(), domain.NotificationEvent{Slot: domain.Slots[i%len(domain.Slots)]})
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.Active(), len(domain.Slots))
}

func TestLogSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	b := NewBoard()
	b.Subscribe(LogSubscriber(logger))

	b.Post(context.Background(), domain.NotificationEvent{
		Slot:   domain.SlotSaveSuccess,
		Title:  "Save QR code successfully",
		Action: domain.Action{Kind: domain.ActionOpenGallery, URI: "http://localhost/v1/gallery/1"},
	})
	b.Post(context.Background(), domain.NotificationEvent{Slot: domain.SlotSaveFailure})

	out := buf.String()
	assert.Contains(t, out, `"slot":"SAVE_SUCCESS"`)
	assert.Contains(t, out, `"action":"open_gallery"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "notify: posted")
}

func TestBoardPostSurvivesPanickingSubscriber(t *testing.T) {
	var logs bytes.Buffer
	b := NewBoard(WithLogger(zerolog.New(&logs)))

	var received []domain.Slot
	b.Subscribe(func(evt domain.NotificationEvent) {
		if evt.Slot == domain.SlotSaveSuccess {
			panic("sink down")
		}
	})
	b.Subscribe(func(evt domain.NotificationEvent) {
		received = append(received, evt.Slot)
	})

	require.NotPanics(t, func() {
		b.Post(context.Background(), domain.NotificationEvent{Slot: domain.SlotSaveSuccess})
	})

	evt, ok := b.Get(domain.SlotSaveSuccess)
	require.True(t, ok)
	assert.Equal(t, domain.SlotSaveSuccess, evt.Slot)
	assert.Equal(t, []domain.Slot{domain.SlotSaveSuccess}, received)
	assert.Contains(t, logs.String(), "notify: subscriber panicked")
}
