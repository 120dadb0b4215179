package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
)

// BatchLock はバッチ起動の多重実行を抑止する相互排他のインターフェースです
type BatchLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// 自分の保持するロックのみ解放する
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisBatchLock はBatchLockのRedis実装です
// SETNXとTTLで実装しているため、TTL超過時にはロックが自然解放されます
type RedisBatchLock struct {
	client *redis.Client
	key    string
	holder string
	ttl    time.Duration
}

// NewRedisBatchLock は新しいRedisBatchLockを作成します
func NewRedisBatchLock(client *redis.Client, key string, ttl time.Duration) *RedisBatchLock {
	return &RedisBatchLock{
		client: client,
		key:    key,
		holder: xid.New().String(),
		ttl:    ttl,
	}
}

// Acquire はロックの取得を試みます
// 他の起動がロックを保持している場合はfalseを返します
func (l *RedisBatchLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire batch lock: %w", err)
	}
	return ok, nil
}

// Release は自分が保持しているロックを解放します
func (l *RedisBatchLock) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.holder).Err(); err != nil {
		return fmt.Errorf("failed to release batch lock: %w", err)
	}
	return nil
}
