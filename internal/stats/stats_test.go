package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegonte/fbintel/internal/model"
)

func row(team, opp, comp string, date time.Time, gf, sh, sot int) model.Match {
	return model.Match{
		Team:          team,
		Opponent:      opp,
		Competition:   comp,
		Date:          date,
		GoalsFor:      gf,
		Shots:         sh,
		ShotsOnTarget: sot,
	}
}

func TestCompute(t *testing.T) {
	d1 := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	matches := []model.Match{
		row("Arsenal", "Chelsea", "Premier League", d1, 2, 14, 6),
		row("Chelsea", "Arsenal", "Premier League", d1, 1, 8, 3),
		row("Girona", "Sevilla", "La Liga", d2, 0, 5, 1),
	}

	r := Compute(matches)

	assert.Equal(t, 3, r.TotalMatches)
	assert.Equal(t, 3, r.TotalGoals)
	assert.Equal(t, 27, r.TotalShots)
	assert.Equal(t, 10, r.ShotsOnTarget)
	assert.InDelta(t, 100.0*3/27, r.ConversionRate, 0.01)

	require.NotEmpty(t, r.ByCompetition)
	assert.Equal(t, "Premier League", r.ByCompetition[0].Name)
	assert.Equal(t, 2, r.ByCompetition[0].Count)

	// Sevilla appears only as an opponent but still registers.
	names := make(map[string]int)
	for _, e := range r.TopTeams {
		names[e.Name] = e.Count
	}
	assert.Contains(t, names, "Sevilla")
	assert.Equal(t, 0, names["Sevilla"])
	assert.Equal(t, 1, names["Arsenal"])

	require.Len(t, r.ByDay, 2)
	assert.Equal(t, "2026-08-26", r.ByDay[0].Name)
	assert.Equal(t, 2, r.ByDay[0].Count)
}

func TestCompute_Empty(t *testing.T) {
	r := Compute(nil)
	assert.Equal(t, 0, r.TotalMatches)
	assert.Zero(t, r.ConversionRate)
	assert.Empty(t, r.ByCompetition)
}

func TestCompute_TopTeamsCapped(t *testing.T) {
	d := time.Now()
	var matches []model.Match
	for i := 0; i < 15; i++ {
		matches = append(matches, row(string(rune('A'+i)), "", "X", d, 0, 0, 0))
	}
	r := Compute(matches)
	assert.Len(t, r.TopTeams, 10)
}

func TestRender(t *testing.T) {
	d := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	r := Compute([]model.Match{row("Arsenal", "Chelsea", "Premier League", d, 2, 14, 6)})

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()

	assert.Contains(t, out, "=== Match Statistics ===")
	assert.Contains(t, out, "Total Matches: 1")
	assert.Contains(t, out, "Premier League: 1 matches")
	assert.Contains(t, out, "Total Goals: 2")
	assert.Contains(t, out, "Shot Conversion: 14.3%")
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	Compute(nil).Render(&buf)
	assert.Contains(t, buf.String(), "No matches to analyze")
}
