// Package provider defines the data-source contract and the shared HTTP
// plumbing (cache, rate limits, circuit breakers) every source goes through.
package provider

import (
	"context"
	"time"

	"github.com/osegonte/fbintel/internal/model"
)

// Client fetches scheduled and completed fixtures for a single calendar date.
type Client interface {
	Name() string
	FetchDay(ctx context.Context, date time.Time) ([]model.Match, error)
}
