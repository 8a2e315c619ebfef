package csvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/storage"
)

func seedReader(t *testing.T) (*Reader, time.Time) {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	d1 := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	day1 := model.Standardize(model.Fixture{
		ExternalID: "e1", Date: d1, HomeTeam: "Arsenal", AwayTeam: "Chelsea",
		HomeGoals: 2, AwayGoals: 0, Competition: "Premier League",
		Status: model.StatusFinished, Source: "fbref",
	}, time.Now())
	day2 := model.Standardize(model.Fixture{
		ExternalID: "e2", Date: d2, HomeTeam: "Girona", AwayTeam: "Sevilla",
		Competition: "La Liga", Status: model.StatusScheduled, Source: "sofascore",
	}, time.Now())

	_, err = s.WriteDaily(d1, day1)
	require.NoError(t, err)
	_, err = s.WriteDaily(d2, day2)
	require.NoError(t, err)

	return NewReader(s), d1
}

func TestReader_List(t *testing.T) {
	r, d1 := seedReader(t)
	ctx := context.Background()

	matches, err := r.List(ctx, storage.MatchFilter{
		Range: storage.TimeRange{From: d1, To: d1.AddDate(0, 0, 1)},
	})
	require.NoError(t, err)
	assert.Len(t, matches, 4)
	// Most recent day first.
	assert.Equal(t, "La Liga", matches[0].Competition)
}

func TestReader_ListFilters(t *testing.T) {
	r, d1 := seedReader(t)
	ctx := context.Background()
	tr := storage.TimeRange{From: d1, To: d1.AddDate(0, 0, 1)}

	byTeam, err := r.List(ctx, storage.MatchFilter{Range: tr, Team: "arsenal"})
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
	assert.Equal(t, "Arsenal", byTeam[0].Team)

	bySource, err := r.List(ctx, storage.MatchFilter{Range: tr, Source: "sofascore"})
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	byComp, err := r.List(ctx, storage.MatchFilter{Range: tr, Competition: "la liga"})
	require.NoError(t, err)
	assert.Len(t, byComp, 2)
}

func TestReader_ListPagination(t *testing.T) {
	r, d1 := seedReader(t)
	ctx := context.Background()
	tr := storage.TimeRange{From: d1, To: d1.AddDate(0, 0, 1)}

	page, err := r.List(ctx, storage.MatchFilter{Range: tr, Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := r.List(ctx, storage.MatchFilter{Range: tr, Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	none, err := r.List(ctx, storage.MatchFilter{Range: tr, Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReader_Summaries(t *testing.T) {
	r, d1 := seedReader(t)

	summaries, err := r.Summaries(context.Background(),
		storage.TimeRange{From: d1, To: d1.AddDate(0, 0, 1)}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, summaries)

	byName := make(map[string]storage.TeamSummary)
	for _, s := range summaries {
		byName[s.Name] = s
	}
	assert.Equal(t, int64(1), byName["Arsenal"].Wins)
	assert.Equal(t, int64(2), byName["Arsenal"].Goals)
	assert.Equal(t, int64(1), byName["Chelsea"].Losses)
}

func TestReader_CountBySource(t *testing.T) {
	r, d1 := seedReader(t)

	counts, err := r.CountBySource(context.Background(),
		storage.TimeRange{From: d1, To: d1.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["fbref"])
	assert.Equal(t, int64(2), counts["sofascore"])
}
