package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()

	m.Set("k1", "events_today", []byte("payload"))
	data, ok := m.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), data)
}

func TestMemory_TTLExpiration(t *testing.T) {
	m := NewMemory()
	m.SetTTL("short", 50*time.Millisecond)

	m.Set("k", "short", []byte("x"))
	_, ok := m.Get("k")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = m.Get("k")
	assert.False(t, ok, "expected entry to expire")
}

func TestMemory_ZeroTTLNeverCaches(t *testing.T) {
	m := NewMemory()
	m.SetTTL("live", 0)

	m.Set("k", "live", []byte("x"))
	_, ok := m.Get("k")
	assert.False(t, ok)
}

func TestMemory_UnknownCategoryGetsFallbackTTL(t *testing.T) {
	m := NewMemory()

	m.Set("k", "mystery", []byte("x"))
	_, ok := m.Get("k")
	assert.True(t, ok)
}

func TestMemory_Purge(t *testing.T) {
	m := NewMemory()
	m.SetTTL("short", 10*time.Millisecond)

	m.Set("a", "short", []byte("1"))
	m.Set("b", "events_past", []byte("2"))
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 1, m.Purge())
	_, _, entries := m.Stats()
	assert.Equal(t, 1, entries)
}

func TestMemory_Stats(t *testing.T) {
	m := NewMemory()
	m.Set("k", "events_today", []byte("x"))

	m.Get("k")
	m.Get("missing")

	hits, misses, entries := m.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, entries)
}

func TestLayered_MemoryOnlyWithoutRedis(t *testing.T) {
	l := NewLayered(nil, time.Minute)
	ctx := context.Background()

	l.Set(ctx, "k", "events_today", []byte("v"))
	data, ok := l.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	_, ok = l.Get(ctx, "absent")
	assert.False(t, ok)
	assert.NoError(t, l.Close())
}
