package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"cv-screening-backend/internal/domain"
	"cv-screening-backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string, total int64) domain.NewCVEvent {
	return domain.NewCVEvent{Success: true, Data: domain.CVRecord{ID: id, FullName: "A"}, TotalCount: total}
}

func TestHub_Publish(t *testing.T) {
	hub := notify.NewHub()
	a, unsubA := hub.Subscribe()
	b, unsubB := hub.Subscribe()
	defer unsubB()

	require.NoError(t, hub.Publish(context.Background(), event("1", 1)))
	assert.Equal(t, "1", (<-a).Data.ID)
	assert.Equal(t, "1", (<-b).Data.ID)

	unsubA()
	unsubA()
	assert.Equal(t, 1, hub.Subscribers())
	_, open := <-a
	assert.False(t, open)

	require.NoError(t, hub.Publish(context.Background(), event("2", 2)))
	assert.Equal(t, int64(2), (<-b).TotalCount)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := notify.NewHub()
	ch, unsub := hub.Subscribe()
	defer unsub()

	for i := 0; i < 100; i++ {
		require.NoError(t, hub.Publish(context.Background(), event("x", int64(i))))
	}
	assert.Equal(t, int64(0), (<-ch).TotalCount)
}

func TestDecodeEvent(t *testing.T) {
	raw, err := json.Marshal(event("abc", 7))
	require.NoError(t, err)

	got, err := notify.DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Data.ID)
	assert.Equal(t, int64(7), got.TotalCount)

	_, err = notify.DecodeEvent([]byte("{"))
	assert.Error(t, err)
}
