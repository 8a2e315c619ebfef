package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Match is a single team-oriented view of a fixture. Every fixture produces two
// rows, one per side, so team-centric queries and CSV exports stay flat.
type Match struct {
	ID            string                 `json:"id" db:"id"`
	ExternalID    string                 `json:"external_id" db:"external_id"`
	Date          time.Time              `json:"date" db:"match_date"`
	StartTime     string                 `json:"start_time" db:"start_time"`
	Team          string                 `json:"team" db:"team"`
	Opponent      string                 `json:"opponent" db:"opponent"`
	HomeAway      string                 `json:"home_away" db:"home_away"`
	Venue         string                 `json:"venue" db:"venue"`
	Competition   string                 `json:"competition" db:"competition"`
	Country       string                 `json:"country" db:"country"`
	Round         string                 `json:"round" db:"round"`
	Status        string                 `json:"status" db:"status"`
	Result        string                 `json:"result" db:"result"`
	GoalsFor      int                    `json:"gf" db:"goals_for"`
	GoalsAgainst  int                    `json:"ga" db:"goals_against"`
	XG            float64                `json:"xg" db:"xg"`
	XGA           float64                `json:"xga" db:"xga"`
	Shots         int                    `json:"sh" db:"shots"`
	ShotsOnTarget int                    `json:"sot" db:"shots_on_target"`
	Possession    float64                `json:"possession" db:"possession"`
	Corners       int                    `json:"corners" db:"corners"`
	Source        string                 `json:"source" db:"source"`
	ScrapedAt     time.Time              `json:"scraped_at" db:"scraped_at"`
	Attributes    map[string]interface{} `json:"attributes,omitempty" db:"-"`
}

// Fixture is a provider-neutral event before standardization into team rows.
type Fixture struct {
	ExternalID  string
	Date        time.Time
	StartTime   string
	HomeTeam    string
	AwayTeam    string
	HomeGoals   int
	AwayGoals   int
	HomeXG      float64
	AwayXG      float64
	Venue       string
	Competition string
	Country     string
	Round       string
	Status      string
	Source      string
	Attributes  map[string]interface{}
}

// Match statuses as reported by providers, normalized to lowercase.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "inprogress"
	StatusFinished   = "finished"
	StatusPostponed  = "postponed"
	StatusCancelled  = "cancelled"
)

// CSVHeader is the fixed column order for all CSV exports.
var CSVHeader = []string{
	"match_id", "external_id", "date", "start_time", "team", "opponent",
	"home_away", "venue", "competition", "country", "round", "status",
	"result", "gf", "ga", "xg", "xga", "sh", "sot", "possession",
	"corners", "source",
}

// Key identifies a team-row for deduplication. External IDs are
// provider-prefixed, so the key is the fixture itself: date plus the
// normalized team pair. The same match from two sources collides here.
func (m Match) Key() string {
	return m.Date.Format("2006-01-02") + "|" + strings.ToLower(m.Team) + "|" + strings.ToLower(m.Opponent)
}

// CSVRecord renders the match in CSVHeader order.
func (m Match) CSVRecord() []string {
	return []string{
		m.ID,
		m.ExternalID,
		m.Date.Format("2006-01-02"),
		m.StartTime,
		m.Team,
		m.Opponent,
		m.HomeAway,
		m.Venue,
		m.Competition,
		m.Country,
		m.Round,
		m.Status,
		m.Result,
		fmt.Sprintf("%d", m.GoalsFor),
		fmt.Sprintf("%d", m.GoalsAgainst),
		fmt.Sprintf("%.2f", m.XG),
		fmt.Sprintf("%.2f", m.XGA),
		fmt.Sprintf("%d", m.Shots),
		fmt.Sprintf("%d", m.ShotsOnTarget),
		fmt.Sprintf("%.1f", m.Possession),
		fmt.Sprintf("%d", m.Corners),
		m.Source,
	}
}

// Standardize expands a fixture into its two team-oriented rows.
func Standardize(f Fixture, scrapedAt time.Time) []Match {
	home := Match{
		ID:           uuid.NewString(),
		ExternalID:   f.ExternalID,
		Date:         f.Date,
		StartTime:    f.StartTime,
		Team:         f.HomeTeam,
		Opponent:     f.AwayTeam,
		HomeAway:     "home",
		Venue:        f.Venue,
		Competition:  f.Competition,
		Country:      f.Country,
		Round:        f.Round,
		Status:       f.Status,
		GoalsFor:     f.HomeGoals,
		GoalsAgainst: f.AwayGoals,
		XG:           f.HomeXG,
		XGA:          f.AwayXG,
		Source:       f.Source,
		ScrapedAt:    scrapedAt,
		Attributes:   f.Attributes,
	}
	away := home
	away.ID = uuid.NewString()
	away.Team = f.AwayTeam
	away.Opponent = f.HomeTeam
	away.HomeAway = "away"
	away.GoalsFor = f.AwayGoals
	away.GoalsAgainst = f.HomeGoals
	away.XG = f.AwayXG
	away.XGA = f.HomeXG

	if f.Status == StatusFinished {
		home.Result = resultFor(f.HomeGoals, f.AwayGoals)
		away.Result = resultFor(f.AwayGoals, f.HomeGoals)
	}

	return []Match{home, away}
}

func resultFor(gf, ga int) string {
	switch {
	case gf > ga:
		return "W"
	case gf < ga:
		return "L"
	default:
		return "D"
	}
}

// Dedupe keeps the richest row per (date, team, opponent), collapsing the same
// fixture across providers. Rows carrying shot or xG data win over bare
// schedule rows regardless of arrival order.
func Dedupe(matches []Match) []Match {
	seen := make(map[string]int, len(matches))
	out := make([]Match, 0, len(matches))

	for _, m := range matches {
		idx, ok := seen[m.Key()]
		if !ok {
			seen[m.Key()] = len(out)
			out = append(out, m)
			continue
		}
		if richness(m) > richness(out[idx]) {
			out[idx] = m
		}
	}
	return out
}

func richness(m Match) int {
	score := 0
	if m.Shots > 0 {
		score += 2
	}
	if m.XG > 0 {
		score++
	}
	if m.Possession > 0 {
		score++
	}
	if m.Status == StatusFinished {
		score++
	}
	return score
}
