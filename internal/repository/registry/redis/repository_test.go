package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinesync/server/internal/repository/registry"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	return NewRepo(rc, time.Minute, slog.Default()), s
}

func TestReserve(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Reserve(ctx, "482193"))

	err := r.Reserve(ctx, "482193")
	assert.ErrorIs(t, err, registry.ErrCodeTaken)

	// a different code is unaffected
	require.NoError(t, r.Reserve(ctx, "482194"))
}

func TestRelease(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Reserve(ctx, "482193"))
	require.NoError(t, r.Release(ctx, "482193"))

	// code is reservable again after release
	require.NoError(t, r.Reserve(ctx, "482193"))

	err := r.Release(ctx, "999999")
	assert.ErrorIs(t, err, registry.ErrCodeNotFound)
}

func TestRefresh(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Reserve(ctx, "482193"))

	s.FastForward(30 * time.Second)
	require.NoError(t, r.Refresh(ctx, "482193"))

	// refresh restarted the ttl, so the reservation survives the
	// original deadline
	s.FastForward(45 * time.Second)
	err := r.Reserve(ctx, "482193")
	assert.ErrorIs(t, err, registry.ErrCodeTaken)

	s.FastForward(time.Minute)
	assert.ErrorIs(t, r.Refresh(ctx, "482193"), registry.ErrCodeNotFound)
}
