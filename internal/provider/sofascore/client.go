// Package sofascore fetches scheduled football events from the SofaScore
// public JSON API.
package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/provider"
)

const sourceName = "sofascore"

// Endpoint templates tried in order for each date. The API moves paths around;
// the first one that answers wins.
var endpointTemplates = []string{
	"%s/api/v1/sport/football/scheduled-events/%s",
	"%s/api/v1/sport/football/events/date/%s",
}

// Client fetches football events per calendar date.
type Client struct {
	fetcher *provider.Fetcher
	baseURL string
}

// New creates a SofaScore client on top of the shared fetcher.
func New(fetcher *provider.Fetcher, baseURL string) *Client {
	return &Client{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name implements provider.Client.
func (c *Client) Name() string { return sourceName }

// FetchDay retrieves all football events for the given date.
func (c *Client) FetchDay(ctx context.Context, date time.Time) ([]model.Match, error) {
	dateStr := date.Format("2006-01-02")
	category := cacheCategory(date)

	var lastErr error
	for _, tmpl := range endpointTemplates {
		url := fmt.Sprintf(tmpl, c.baseURL, dateStr)

		body, err := c.fetcher.Get(ctx, url, category)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug().Err(err).Str("url", url).Msg("sofascore endpoint failed, trying next")
			continue
		}

		matches, err := ParseEvents(body, date)
		if err != nil {
			lastErr = err
			continue
		}
		return matches, nil
	}
	return nil, fmt.Errorf("all sofascore endpoints failed for %s: %w", dateStr, lastErr)
}

// eventsResponse mirrors the subset of the API payload we consume.
type eventsResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID         int64 `json:"id"`
	Tournament struct {
		Name     string `json:"name"`
		Category struct {
			Name string `json:"name"`
		} `json:"category"`
	} `json:"tournament"`
	RoundInfo struct {
		Round int `json:"round"`
	} `json:"roundInfo"`
	HomeTeam struct {
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Name string `json:"name"`
	} `json:"awayTeam"`
	HomeScore struct {
		Current int `json:"current"`
	} `json:"homeScore"`
	AwayScore struct {
		Current int `json:"current"`
	} `json:"awayScore"`
	Status struct {
		Type string `json:"type"`
	} `json:"status"`
	StartTimestamp int64 `json:"startTimestamp"`
}

// ParseEvents decodes an API payload into standardized match rows, dropping
// events that do not fall on the requested date (the API pads adjacent days).
func ParseEvents(body []byte, date time.Time) ([]model.Match, error) {
	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode sofascore events: %w", err)
	}

	scrapedAt := time.Now().UTC()
	var matches []model.Match
	for _, ev := range resp.Events {
		if ev.HomeTeam.Name == "" || ev.AwayTeam.Name == "" {
			continue
		}
		start := time.Unix(ev.StartTimestamp, 0).UTC()
		if !sameDay(start, date) {
			continue
		}

		fixture := model.Fixture{
			ExternalID:  fmt.Sprintf("ss-%d", ev.ID),
			Date:        start.Truncate(24 * time.Hour),
			StartTime:   start.Format("15:04"),
			HomeTeam:    ev.HomeTeam.Name,
			AwayTeam:    ev.AwayTeam.Name,
			HomeGoals:   ev.HomeScore.Current,
			AwayGoals:   ev.AwayScore.Current,
			Competition: ev.Tournament.Name,
			Country:     ev.Tournament.Category.Name,
			Status:      normalizeStatus(ev.Status.Type),
			Source:      sourceName,
		}
		if ev.RoundInfo.Round > 0 {
			fixture.Round = fmt.Sprintf("Round %d", ev.RoundInfo.Round)
		}

		matches = append(matches, model.Standardize(fixture, scrapedAt)...)
	}
	return matches, nil
}

func normalizeStatus(s string) string {
	switch strings.ToLower(s) {
	case "finished":
		return model.StatusFinished
	case "inprogress":
		return model.StatusInProgress
	case "postponed":
		return model.StatusPostponed
	case "canceled", "cancelled":
		return model.StatusCancelled
	case "notstarted", "":
		return model.StatusScheduled
	default:
		return strings.ToLower(s)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func cacheCategory(date time.Time) string {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	target := date.UTC().Truncate(24 * time.Hour)
	switch {
	case target.Equal(today):
		return "events_today"
	case target.After(today):
		return "events_future"
	default:
		return "events_past"
	}
}
