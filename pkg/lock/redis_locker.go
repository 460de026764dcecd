package lock

import (
	"context"
	"time"

	"eduverse_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 仅当 value 仍是自己的 token 时才删除，避免释放别人续上的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 SET NX PX 的分布式锁，TTL 兜底持有者崩溃的情况
type RedisLocker struct {
	Client     *redis.Client
	Prefix     string
	TTL        time.Duration
	Timeout    time.Duration
	RetryDelay time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, timeout time.Duration) *RedisLocker {
	return &RedisLocker{
		Client:     client,
		Prefix:     "eduverse:lock:",
		TTL:        ttl,
		Timeout:    timeout,
		RetryDelay: 20 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.Prefix + key
	token := uuid.New().String()

	waitCtx := ctx
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	for {
		ok, err := l.Client.SetNX(waitCtx, fullKey, token, l.TTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, err
		}
		if ok {
			return func() {
				// 请求的 ctx 可能已取消，释放使用独立 ctx
				relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := releaseScript.Run(relCtx, l.Client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
					logger.Log.Warn("Failed to release redis lock", zap.String("key", fullKey), zap.Error(err))
				}
			}, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrTimeout
		case <-time.After(l.RetryDelay):
		}
	}
}
