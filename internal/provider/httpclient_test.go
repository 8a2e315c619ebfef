package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegonte/fbintel/internal/cache"
	"github.com/osegonte/fbintel/internal/config"
)

func testProviderConfig() config.ProviderConfig {
	return config.ProviderConfig{
		RequestsPerSec: 100,
		Burst:          100,
		Timeout:        5 * time.Second,
		MaxRetries:     1,
	}
}

func TestFetcher_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, "payload")
	}))
	defer srv.Close()

	f := NewFetcher("test", "", testProviderConfig(), nil)
	body, err := f.Get(context.Background(), srv.URL, "events_today")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
}

func TestFetcher_CacheAvoidsSecondRequest(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, "cached-payload")
	}))
	defer srv.Close()

	c := cache.NewLayered(nil, time.Minute)
	f := NewFetcher("test", "", testProviderConfig(), c)

	ctx := context.Background()
	_, err := f.Get(ctx, srv.URL, "events_today")
	require.NoError(t, err)

	body, err := f.Get(ctx, srv.URL, "events_today")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached-payload"), body)
	assert.Equal(t, 1, hits)
}

func TestFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher("test", "", testProviderConfig(), nil)
	_, err := f.Get(context.Background(), srv.URL, "events_today")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetcher_NotFoundNoRetryNoBreakerTrip(t *testing.T) {
	var deadHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		deadHits++
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testProviderConfig()
	cfg.MaxRetries = 3
	f := NewFetcher("test", "", cfg, nil)
	ctx := context.Background()

	// Repeated 404s on a dead endpoint: one request each, no backoff retries.
	for i := 0; i < 5; i++ {
		_, err := f.Get(ctx, srv.URL+"/old", "events_today")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 5, deadHits)

	// The breaker stayed closed, so the fallback endpoint still answers.
	body, err := f.Get(ctx, srv.URL+"/new", "events_today")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"events":[]}`), body)
}

func TestFetcher_RecoversOnRetry(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer srv.Close()

	cfg := testProviderConfig()
	cfg.MaxRetries = 2
	f := NewFetcher("test", "", cfg, nil)

	body, err := f.Get(context.Background(), srv.URL, "events_today")
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), body)
	assert.Equal(t, 2, hits)
}

func TestFetcher_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testProviderConfig()
	f := NewFetcher("test", "", cfg, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.Get(ctx, srv.URL, "events_today")
		require.Error(t, err)
	}

	// Breaker is open now: the next call fails without hitting the server.
	_, err := f.Get(ctx, srv.URL, "events_today")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestRandomHeaders(t *testing.T) {
	h := RandomHeaders("https://www.sofascore.com")
	assert.NotEmpty(t, h.Get("User-Agent"))
	assert.Equal(t, "https://www.sofascore.com", h.Get("Origin"))
	assert.Equal(t, "https://www.sofascore.com/", h.Get("Referer"))

	plain := RandomHeaders("")
	assert.Empty(t, plain.Get("Origin"))
	assert.NotEmpty(t, plain.Get("Accept"))
}

func TestHostLimiter_Allow(t *testing.T) {
	l := NewHostLimiter(1, 1)

	assert.True(t, l.Allow("host-a"))
	assert.False(t, l.Allow("host-a"), "burst of 1 exhausted")
	assert.True(t, l.Allow("host-b"), "hosts are limited independently")
}

func TestHostLimiter_WaitHonorsContext(t *testing.T) {
	l := NewHostLimiter(0.001, 1)
	require.True(t, l.Allow("slow-host"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "slow-host")
	assert.Error(t, err)
}
