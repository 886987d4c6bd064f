// internal/storage/lock.go
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobsaddah/jobharvest/internal/utils"
)

// Locker serializes the read-candidates → decide → write step per natural
// key. Without it two concurrent ingestions of near-duplicate postings can
// both create records.
type Locker interface {
	// Acquire blocks until the key's lock is held or ctx is done. The
	// returned release func must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedMutex is the in-process Locker for single-instance deployments.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an in-process locker.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		entry.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// The goroutine still takes the mutex eventually; release it and
		// drop the ref so the entry can be reclaimed.
		go func() {
			<-acquired
			entry.mu.Unlock()
			k.releaseRef(key, entry)
		}()
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			entry.mu.Unlock()
			k.releaseRef(key, entry)
		})
	}
	return release, nil
}

func (k *KeyedMutex) releaseRef(key string, entry *keyedLock) {
	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

var redisLogger = utils.NewComponentLogger("redis-lock")

// RedisLocker is the multi-instance Locker built on SET NX with a TTL.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker parses the URL, pings the server, and returns the locker.
func NewRedisLocker(ctx context.Context, redisURL string, ttl time.Duration) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if ttl == 0 {
		ttl = 30 * time.Second
	}

	redisLogger.Info("connected to redis")
	return &RedisLocker{client: client, ttl: ttl, retry: 100 * time.Millisecond}, nil
}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "jobharvest:lock:" + key

	for {
		ok, err := r.client.SetNX(ctx, lockKey, "1", r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %q: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-time.After(r.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := r.client.Del(context.Background(), lockKey).Err(); err != nil {
				redisLogger.Warnf("release lock %q: %v", key, err)
			}
		})
	}
	return release, nil
}

// Close closes the underlying client.
func (r *RedisLocker) Close() error {
	return r.client.Close()
}
