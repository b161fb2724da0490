// Package lastseen remembers when each device last reported.
package lastseen

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	// Touch records at unless a later time is already stored.
	Touch(ctx context.Context, mac string, at time.Time) error
	// Get reports the stored time; ok is false when the device was never seen.
	Get(ctx context.Context, mac string) (at time.Time, ok bool, err error)
	// Forget drops the device so a re-registered MAC starts unseen.
	Forget(ctx context.Context, mac string) error
}

const DefaultKey = "agrisense:devices:last_seen"

// Redis keeps one sorted set scored by unix milliseconds; ZADD GT makes
// Touch monotonic without a read-modify-write.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) Touch(ctx context.Context, mac string, at time.Time) error {
	return r.rdb.ZAddGT(ctx, r.key, redis.Z{Score: float64(at.UnixMilli()), Member: mac}).Err()
}

func (r *Redis) Get(ctx context.Context, mac string) (time.Time, bool, error) {
	score, err := r.rdb.ZScore(ctx, r.key, mac).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(int64(score)).UTC(), true, nil
}

func (r *Redis) Forget(ctx context.Context, mac string) error {
	return r.rdb.ZRem(ctx, r.key, mac).Err()
}

func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }
