// Package stats computes and renders summary statistics over collected matches.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/osegonte/fbintel/internal/model"
)

// CountEntry is one name/count line in a grouped section.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report holds the aggregates the CLI prints and the dashboard serves.
type Report struct {
	TotalMatches   int          `json:"total_matches"`
	ByCompetition  []CountEntry `json:"by_competition"`
	TopTeams       []CountEntry `json:"top_teams"`
	ByDay          []CountEntry `json:"by_day"`
	TotalGoals     int          `json:"total_goals"`
	TotalShots     int          `json:"total_shots"`
	ShotsOnTarget  int          `json:"shots_on_target"`
	ConversionRate float64      `json:"conversion_rate"`
}

// topTeamsLimit caps the team leaderboard like the original report did.
const topTeamsLimit = 10

// Compute aggregates a set of team-rows into a report. Opponents count as
// appearances so a team's match count reflects both data perspectives.
func Compute(matches []model.Match) Report {
	r := Report{TotalMatches: len(matches)}
	if len(matches) == 0 {
		return r
	}

	competitions := make(map[string]int)
	teams := make(map[string]int)
	days := make(map[string]int)

	for _, m := range matches {
		comp := m.Competition
		if comp == "" {
			comp = "Unknown"
		}
		competitions[comp]++

		team := m.Team
		if team == "" {
			team = "Unknown"
		}
		teams[team]++
		if m.Opponent != "" {
			// Opponents register as known teams even when no row carries them.
			if _, ok := teams[m.Opponent]; !ok {
				teams[m.Opponent] = 0
			}
		}

		days[m.Date.Format("2006-01-02")]++

		r.TotalGoals += m.GoalsFor
		r.TotalShots += m.Shots
		r.ShotsOnTarget += m.ShotsOnTarget
	}

	if r.TotalShots > 0 {
		r.ConversionRate = float64(r.TotalGoals) / float64(r.TotalShots) * 100
	}

	r.ByCompetition = sortedEntries(competitions, 0)
	r.TopTeams = sortedEntries(teams, topTeamsLimit)
	r.ByDay = sortedEntriesByName(days)

	return r
}

// Render writes the human-readable report the collect command prints.
func (r Report) Render(w io.Writer) {
	fmt.Fprintln(w, "\n=== Match Statistics ===")
	fmt.Fprintf(w, "Total Matches: %d\n", r.TotalMatches)
	if r.TotalMatches == 0 {
		fmt.Fprintln(w, "No matches to analyze")
		return
	}

	fmt.Fprintln(w, "\nMatches by Competition:")
	for _, e := range r.ByCompetition {
		fmt.Fprintf(w, "  • %s: %d matches\n", e.Name, e.Count)
	}

	fmt.Fprintln(w, "\nTop 10 Teams by Match Count:")
	for _, e := range r.TopTeams {
		fmt.Fprintf(w, "  • %s: %d matches\n", e.Name, e.Count)
	}

	fmt.Fprintln(w, "\nMatches by Day:")
	for _, e := range r.ByDay {
		fmt.Fprintf(w, "  • %s: %d matches\n", e.Name, e.Count)
	}

	fmt.Fprintln(w, "\nMatch Statistics:")
	fmt.Fprintf(w, "  • Total Goals: %d\n", r.TotalGoals)
	fmt.Fprintf(w, "  • Total Shots: %d\n", r.TotalShots)
	fmt.Fprintf(w, "  • Total Shots on Target: %d\n", r.ShotsOnTarget)
	if r.TotalShots > 0 {
		fmt.Fprintf(w, "  • Shot Conversion: %.1f%%\n", r.ConversionRate)
	}
}

func sortedEntries(counts map[string]int, limit int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, CountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func sortedEntriesByName(counts map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, CountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
