package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/spec-kit/staffing-service/internal/domain"
)

const redisKeyPrefix = "session:"

// Redis stores sessions as JSON strings with a TTL.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedis wraps a go-redis client. A non-positive ttl defaults to five minutes.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, oops.Code("CACHE_GET_FAILED").With("session_id", sessionID).Wrap(err)
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, oops.Code("CACHE_DECODE_FAILED").With("session_id", sessionID).Wrap(err)
	}
	return e.session(), nil
}

func (c *Redis) Set(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(toEntry(session))
	if err != nil {
		return oops.Code("CACHE_ENCODE_FAILED").With("session_id", session.ID).Wrap(err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+session.ID, raw, c.ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").With("session_id", session.ID).Wrap(err)
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return oops.Code("CACHE_DELETE_FAILED").With("session_id", sessionID).Wrap(err)
	}
	return nil
}
