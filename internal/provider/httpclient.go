package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/osegonte/fbintel/internal/cache"
	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/metrics"
)

// Fetcher is the shared HTTP plumbing all providers go through: response cache,
// per-host rate limiting, circuit breaking, retries with jitter.
type Fetcher struct {
	name    string
	origin  string
	client  *http.Client
	limiter *HostLimiter
	breaker *gobreaker.CircuitBreaker
	cache   *cache.Layered
	retries int
}

// NewFetcher wires the plumbing for one provider from its configuration.
func NewFetcher(name, origin string, cfg config.ProviderConfig, c *cache.Layered) *Fetcher {
	return &Fetcher{
		name:    name,
		origin:  origin,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: NewHostLimiter(cfg.RequestsPerSec, cfg.Burst),
		breaker: NewBreaker(name),
		cache:   c,
		retries: cfg.MaxRetries,
	}
}

// Name returns the provider name this fetcher serves.
func (f *Fetcher) Name() string { return f.name }

// Get fetches rawURL, consulting the cache first. The category selects the
// cache TTL. Responses are cached only on HTTP 200.
func (f *Fetcher) Get(ctx context.Context, rawURL, category string) ([]byte, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(ctx, rawURL); ok {
			metrics.CacheHits.WithLabelValues(f.name).Inc()
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues(f.name).Inc()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", rawURL, err)
	}

	var body []byte
	attempts := f.retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = f.limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}

		result, execErr := f.breaker.Execute(func() (interface{}, error) {
			body, reqErr := f.doRequest(ctx, rawURL)
			if errors.Is(reqErr, ErrNotFound) {
				// A 404 is a definitive answer: no retry, no breaker failure.
				return notFound{}, nil
			}
			return body, reqErr
		})
		if execErr == nil {
			if _, ok := result.(notFound); ok {
				metrics.ProviderErrors.WithLabelValues(f.name, "not_found").Inc()
				return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
			}
			body = result.([]byte)
			err = nil
			break
		}
		err = execErr

		if execErr == gobreaker.ErrOpenState || execErr == gobreaker.ErrTooManyRequests {
			metrics.ProviderErrors.WithLabelValues(f.name, "breaker_open").Inc()
			return nil, fmt.Errorf("provider %s unavailable: %w", f.name, execErr)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Debug().Err(execErr).Str("provider", f.name).Int("attempt", attempt).Msg("fetch attempt failed")
		if attempt < attempts {
			sleepWithJitter(ctx, attempt)
		}
	}
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(f.name, "fetch_failed").Inc()
		return nil, fmt.Errorf("fetch %s after %d attempts: %w", rawURL, attempts, err)
	}

	if f.cache != nil {
		f.cache.Set(ctx, rawURL, category, body)
	}
	return body, nil
}

func (f *Fetcher) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header = RandomHeaders(f.origin)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusTooManyRequests:
		return nil, fmt.Errorf("blocked by provider: status %d", resp.StatusCode)
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// ErrNotFound indicates the provider has no data for the requested resource.
var ErrNotFound = errors.New("resource not found")

// notFound marks a 404 inside breaker.Execute so it counts as a success there.
type notFound struct{}

// sleepWithJitter backs off 1-3s scaled by attempt, the humanizing delay the
// scrape targets expect.
func sleepWithJitter(ctx context.Context, attempt int) {
	base := time.Duration(attempt) * time.Second
	jitter := time.Duration(rand.Int63n(int64(2 * time.Second)))
	select {
	case <-time.After(base + jitter):
	case <-ctx.Done():
	}
}
