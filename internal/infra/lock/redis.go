package lock

import (
	"context"
	"log/slog"
	"time"

	"bistro/internal/domain/reservation"
	"bistro/internal/pkg/config"
	"bistro/internal/pkg/errs"
	"bistro/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bistro:lock:date:"

// release only deletes the key while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a date lock shared by every instance talking to the same Redis.
// The TTL bounds how long a crashed holder can block a date.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

var _ shared.DateLocker = (*Redis)(nil)

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{client: client, ttl: ttl, retry: 25 * time.Millisecond}
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (r *Redis) Lock(ctx context.Context, date reservation.Date) (func(), error) {
	key := keyPrefix + date.String()
	token := uuid.NewString()

	t := time.NewTicker(r.retry)
	defer t.Stop()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, errs.Wrapf(err, "failed to acquire lock %s", key)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return func() {
		// the caller's context may already be gone when unlocking
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			slog.Warn("failed to release date lock", "key", key, "error", err)
		}
	}, nil
}
