package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Layered is a read-through cache: memory first, Redis second when configured.
// Redis failures degrade to memory-only; they are logged, never fatal.
type Layered struct {
	memory     *Memory
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewLayered builds a layered cache. A nil client disables the Redis tier.
func NewLayered(client *redis.Client, defaultTTL time.Duration) *Layered {
	return &Layered{
		memory:     NewMemory(),
		redis:      client,
		defaultTTL: defaultTTL,
	}
}

// ConnectRedis dials Redis and verifies the connection. Returns nil (memory-only
// mode) when the ping fails.
func ConnectRedis(ctx context.Context, addr string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("Redis unavailable, using memory cache only")
		client.Close()
		return nil
	}
	return client
}

// Get checks memory, then Redis. A Redis hit repopulates the memory tier.
func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool) {
	if data, ok := l.memory.Get(key); ok {
		return data, true
	}
	if l.redis == nil {
		return nil, false
	}

	data, err := l.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	l.memory.Set(key, "events_today", data)
	return data, true
}

// Set writes to memory and best-effort to Redis with the category TTL.
func (l *Layered) Set(ctx context.Context, key, category string, data []byte) {
	l.memory.Set(key, category, data)

	if l.redis == nil {
		return
	}
	ttl, ok := DefaultTTLs[category]
	if !ok || ttl == 0 {
		ttl = l.defaultTTL
	}
	if err := l.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Stats exposes the memory tier counters.
func (l *Layered) Stats() (hits, misses int64, entries int) {
	return l.memory.Stats()
}

// Close releases the Redis client if present.
func (l *Layered) Close() error {
	if l.redis != nil {
		return l.redis.Close()
	}
	return nil
}
