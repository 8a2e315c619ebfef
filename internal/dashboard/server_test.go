package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/pipeline"
	"github.com/osegonte/fbintel/internal/storage"
)

// fakeData serves canned rows.
type fakeData struct {
	matches []model.Match
	fail    bool
}

func (f *fakeData) List(_ context.Context, filter storage.MatchFilter) ([]model.Match, error) {
	if f.fail {
		return nil, fmt.Errorf("synthetic failure")
	}
	var out []model.Match
	for _, m := range f.matches {
		if filter.Team != "" && !strings.EqualFold(m.Team, filter.Team) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeData) Summaries(context.Context, storage.TimeRange, int) ([]storage.TeamSummary, error) {
	if f.fail {
		return nil, fmt.Errorf("synthetic failure")
	}
	return []storage.TeamSummary{{Name: "Arsenal", Matches: 3, Wins: 2}}, nil
}

func (f *fakeData) CountBySource(context.Context, storage.TimeRange) (map[string]int64, error) {
	return map[string]int64{"fbref": 4}, nil
}

// fakeCollector emits a fixed number of day events.
type fakeCollector struct {
	days int
	err  error
}

func (f *fakeCollector) Run(_ context.Context, from time.Time, days int, progress func(pipeline.DayEvent)) (*pipeline.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := 0; i < days; i++ {
		progress(pipeline.DayEvent{Date: from.AddDate(0, 0, i).Format("2006-01-02"), Matches: 2})
	}
	return &pipeline.Result{DaysProcessed: days}, nil
}

func newTestServer(t *testing.T, data DataSource, collector Collector) *Server {
	t.Helper()
	s, err := NewServer(config.DashboardConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  5 * time.Second,
	}, data, collector)
	require.NoError(t, err)
	return s
}

func sampleRows() []model.Match {
	return model.Standardize(model.Fixture{
		ExternalID: "e1", Date: time.Now().UTC().Truncate(24 * time.Hour),
		HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeGoals: 1,
		Competition: "Premier League", Status: model.StatusFinished, Source: "fbref",
	}, time.Now())
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeData{}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestMatchesEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeData{matches: sampleRows()}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/matches?team=arsenal")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Count   int           `json:"count"`
		Matches []model.Match `json:"matches"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Arsenal", body.Matches[0].Team)
}

func TestMatchesEndpoint_BadDate(t *testing.T) {
	s := newTestServer(t, &fakeData{}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/matches?from=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatchesEndpoint_QueryFailure(t *testing.T) {
	s := newTestServer(t, &fakeData{fail: true}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/matches")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestTeamsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeData{}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/teams")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Teams []storage.TeamSummary `json:"teams"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Teams, 1)
	assert.Equal(t, "Arsenal", body.Teams[0].Name)
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeData{matches: sampleRows()}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		TotalMatches int `json:"total_matches"`
		TotalGoals   int `json:"total_goals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.TotalMatches)
	assert.Equal(t, 1, body.TotalGoals)
}

func TestCompetitionsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeData{matches: sampleRows()}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/competitions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Count        int `json:"count"`
		Competitions []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"competitions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Premier League", body.Competitions[0].Name)
	assert.Equal(t, 2, body.Competitions[0].Count)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, &fakeData{}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCollectWS_StreamsProgress(t *testing.T) {
	s := newTestServer(t, &fakeData{}, &fakeCollector{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/collect?days=2"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var types []string
	for i := 0; i < 3; i++ {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{"day", "day", "done"}, types)
}

func TestCollectWS_RejectsBadDays(t *testing.T) {
	s := newTestServer(t, &fakeData{}, &fakeCollector{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/collect?days=999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
