package csvstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegonte/fbintel/internal/model"
)

func sampleMatches(date time.Time) []model.Match {
	f := model.Fixture{
		ExternalID:  "ss-99",
		Date:        date,
		StartTime:   "15:00",
		HomeTeam:    "Arsenal",
		AwayTeam:    "Chelsea",
		HomeGoals:   2,
		AwayGoals:   1,
		HomeXG:      1.8,
		AwayXG:      0.9,
		Competition: "Premier League",
		Country:     "England",
		Status:      model.StatusFinished,
		Source:      "sofascore",
	}
	return model.Standardize(f, time.Now())
}

func TestNew_CreatesLayout(t *testing.T) {
	base := filepath.Join(t.TempDir(), "data")
	_, err := New(base)
	require.NoError(t, err)

	for _, dir := range []string{"daily", "raw"} {
		info, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestWriteDaily_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	path, err := s.WriteDaily(date, sampleMatches(date))
	require.NoError(t, err)
	assert.Contains(t, path, "matches_2026-08-26.csv")

	loaded, err := s.ReadDaily(date)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "Arsenal", loaded[0].Team)
	assert.Equal(t, "W", loaded[0].Result)
	assert.Equal(t, 2, loaded[0].GoalsFor)
	assert.InDelta(t, 1.8, loaded[0].XG, 0.01)
	assert.Equal(t, "Chelsea", loaded[1].Team)
	assert.Equal(t, "L", loaded[1].Result)
}

func TestWriteDaily_EmptySkipsFile(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	path, err := s.WriteDaily(date, nil)
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = s.ReadDaily(date)
	assert.Error(t, err)
}

func TestWriteRange_SortsByDate(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	d1 := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	later := sampleMatches(d2)
	earlier := sampleMatches(d1)
	combined := append(later, earlier...)

	path, err := s.WriteRange(d1, d2, combined)
	require.NoError(t, err)
	assert.Contains(t, path, "all_matches_20260826_to_20260827.csv")

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 4)
	assert.Equal(t, d1, loaded[0].Date)
	assert.Equal(t, d2, loaded[3].Date)
}

func TestWriteRaw(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	path, err := s.WriteRaw("sofascore", date, []byte(`{"events":[]}`))
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join("raw", "sofascore_2026-08-26.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(data))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
