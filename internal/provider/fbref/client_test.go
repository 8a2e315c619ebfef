package fbref

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/provider"
)

const fixturesHTML = `
<html><body>
<table class="stats_table">
  <caption>Premier League Table</caption>
  <tbody>
    <tr>
      <td data-stat="start_time">15:00</td>
      <td data-stat="home_team">Arsenal</td>
      <td data-stat="home_xg">1.8</td>
      <td data-stat="score">2–1</td>
      <td data-stat="away_xg">0.9</td>
      <td data-stat="away_team">Chelsea</td>
      <td data-stat="venue">Emirates Stadium</td>
      <td data-stat="gameweek">28</td>
    </tr>
    <tr class="spacer partial_table"><td></td></tr>
    <tr>
      <td data-stat="start_time">17:30</td>
      <td data-stat="home_team">Everton</td>
      <td data-stat="home_xg"></td>
      <td data-stat="score"></td>
      <td data-stat="away_xg"></td>
      <td data-stat="away_team">Fulham</td>
      <td data-stat="venue">Goodison Park</td>
      <td data-stat="gameweek">28</td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseFixturesPage(t *testing.T) {
	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	matches, err := ParseFixturesPage([]byte(fixturesHTML), date)
	require.NoError(t, err)
	require.Len(t, matches, 4)

	arsenal := matches[0]
	assert.Equal(t, "fb-20260826-arsenal-chelsea", arsenal.ExternalID)
	assert.Equal(t, "Arsenal", arsenal.Team)
	assert.Equal(t, "Premier League", arsenal.Competition)
	assert.Equal(t, model.StatusFinished, arsenal.Status)
	assert.Equal(t, 2, arsenal.GoalsFor)
	assert.Equal(t, 1, arsenal.GoalsAgainst)
	assert.InDelta(t, 1.8, arsenal.XG, 0.001)
	assert.InDelta(t, 0.9, arsenal.XGA, 0.001)
	assert.Equal(t, "W", arsenal.Result)
	assert.Equal(t, "Emirates Stadium", arsenal.Venue)

	chelsea := matches[1]
	assert.Equal(t, "Chelsea", chelsea.Team)
	assert.Equal(t, "L", chelsea.Result)

	everton := matches[2]
	assert.Equal(t, model.StatusScheduled, everton.Status)
	assert.Empty(t, everton.Result)
	assert.Zero(t, everton.XG)
}

func TestParseFixturesPage_NoTables(t *testing.T) {
	_, err := ParseFixturesPage([]byte("<html><body><p>No games</p></body></html>"), time.Now())
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in     string
		hg, ag int
		ok     bool
	}{
		{"2–1", 2, 1, true},
		{"0–0", 0, 0, true},
		{"3-2", 3, 2, true},
		{"", 0, 0, false},
		{"TBD", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hg, ag, ok := parseScore(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.hg, hg)
				assert.Equal(t, tt.ag, ag)
			}
		})
	}
}

func TestFetchDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/en/matches/2026-08-26", r.URL.Path)
		fmt.Fprint(w, fixturesHTML)
	}))
	defer srv.Close()

	cfg := config.ProviderConfig{
		RequestsPerSec: 100,
		Burst:          100,
		Timeout:        5 * time.Second,
		MaxRetries:     1,
	}
	client := New(provider.NewFetcher(sourceName, "", cfg, nil), srv.URL)

	matches, err := client.FetchDay(context.Background(), time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, matches, 4)
}
