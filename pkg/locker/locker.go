package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotAcquired блокировка занята другим процессом
	ErrNotAcquired = errors.New("locker: lock not acquired")

	// ErrRedis ошибка обращения к Redis
	ErrRedis = errors.New("locker: redis error")
)

// unlockScript удаляет ключ, только если он всё ещё принадлежит владельцу токена
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker распределённая блокировка на SET NX PX
type RedisLocker struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
	maxWait    time.Duration
}

// NewRedisLocker создает блокировщик.
// ttl - время жизни блокировки, maxWait - сколько ждать освобождения занятого ключа.
func NewRedisLocker(client redis.UniversalClient, prefix string, ttl, maxWait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		retryDelay: 50 * time.Millisecond,
		maxWait:    maxWait,
	}
}

// Acquire берёт блокировку по ключу, ожидая не дольше maxWait.
// Возвращает функцию освобождения.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: SETNX %s: %v", ErrRedis, fullKey, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.release(ctx, fullKey, token)
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, fullKey)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("%w: unlock %s: %v", ErrRedis, key, err)
	}
	return nil
}

// NopLocker используется, когда Redis выключен: взаимное исключение обеспечивает БД
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
