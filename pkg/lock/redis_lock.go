package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements DocumentLocker as a SETNX lease so the single-writer
// guarantee holds across processes. The TTL caps how long a crashed worker
// can wedge a document.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, documentId uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(documentId), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock for %s: %w", documentId, err)
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, documentId uuid.UUID) error {
	if err := l.client.Del(ctx, l.key(documentId)).Err(); err != nil {
		return fmt.Errorf("release lock for %s: %w", documentId, err)
	}
	return nil
}

func (l *RedisLocker) key(documentId uuid.UUID) string {
	return "docix:indexing-lock:" + documentId.String()
}
