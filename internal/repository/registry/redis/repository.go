package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cinesync/server/internal/repository/registry"
)

// repo reserves room codes in redis so that two concurrently active rooms
// never share a code, even across server instances. A reservation expires
// unless refreshed; an active room refreshes it on every member heartbeat.
type repo struct {
	rc     *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		ttl:    ttl,
		logger: logger,
	}
}

func (r repo) getCodeKey(code string) string {
	return "roomcode:" + code
}

func (r repo) Reserve(ctx context.Context, code string) error {
	r.logger.DebugContext(ctx, "called", "code", code)
	ok, err := r.rc.SetNX(ctx, r.getCodeKey(code), "1", r.ttl).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", registry.ErrCodeTaken)
		return registry.ErrCodeTaken
	}

	return nil
}

func (r repo) Refresh(ctx context.Context, code string) error {
	r.logger.DebugContext(ctx, "called", "code", code)
	ok, err := r.rc.Expire(ctx, r.getCodeKey(code), r.ttl).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", registry.ErrCodeNotFound)
		return registry.ErrCodeNotFound
	}

	return nil
}

func (r repo) Release(ctx context.Context, code string) error {
	r.logger.DebugContext(ctx, "called", "code", code)
	res, err := r.rc.Del(ctx, r.getCodeKey(code)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if res == 0 {
		r.logger.DebugContext(ctx, "returned", "error", registry.ErrCodeNotFound)
		return registry.ErrCodeNotFound
	}

	return nil
}
