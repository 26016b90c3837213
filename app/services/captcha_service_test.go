package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingStore struct {
	*MemoryChallengeStore
	angles map[string]int
}

func (r *recordingStore) Put(ctx context.Context, id string, targetAngle int, ttl time.Duration) error {
	r.angles[id] = targetAngle
	return r.MemoryChallengeStore.Put(ctx, id, targetAngle, ttl)
}

func TestMemoryChallengeStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewMemoryChallengeStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", 90, time.Minute))
	angle, ok, err := store.Take(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90, angle)

	_, ok, err = store.Take(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "challenge is single use")

	require.NoError(t, store.Put(ctx, "expired", 10, -time.Second))
	_, ok, _ = store.Take(ctx, "expired")
	assert.False(t, ok)
}

func TestCaptchaServiceRotate(t *testing.T) {
	store := &recordingStore{MemoryChallengeStore: NewMemoryChallengeStore(time.Minute), angles: map[string]int{}}
	defer store.Close()

	_, err := NewCaptchaServiceRotate(nil, time.Minute, 5, 160)
	assert.Error(t, err)

	svc, err := NewCaptchaServiceRotate(store, time.Minute, 5, 160)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("CorrectAngleVerifiesOnce", func(t *testing.T) {
		ch, err := svc.GenerateRotate(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, ch.ID)
		assert.NotEmpty(t, ch.MasterImageBase64)
		assert.NotEmpty(t, ch.ThumbImageBase64)

		// the user rotates the thumb back by the target angle
		answer := float64(360 - store.angles[ch.ID])
		assert.True(t, svc.VerifyRotate(ctx, ch.ID, answer))
		assert.False(t, svc.VerifyRotate(ctx, ch.ID, answer))
	})

	t.Run("WrongAngleConsumesChallenge", func(t *testing.T) {
		ch, err := svc.GenerateRotate(ctx)
		require.NoError(t, err)

		answer := float64(360 - store.angles[ch.ID])
		assert.False(t, svc.VerifyRotate(ctx, ch.ID, answer+90))
		assert.False(t, svc.VerifyRotate(ctx, ch.ID, answer))
	})

	t.Run("UnknownChallenge", func(t *testing.T) {
		assert.False(t, svc.VerifyRotate(ctx, "missing", 0))
	})
}
