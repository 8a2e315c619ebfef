package csvstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/storage"
)

// Reader serves queries from the daily CSV exports. It backs the dashboard
// when no database is configured.
type Reader struct {
	stores []*Store
}

// NewReader reads across the given stores (one per source).
func NewReader(stores ...*Store) *Reader {
	return &Reader{stores: stores}
}

// List loads every daily file in the filter range and applies the filter
// in memory. Ranges are capped at a year to bound file scans.
func (r *Reader) List(ctx context.Context, filter storage.MatchFilter) ([]model.Match, error) {
	from := filter.Range.From.UTC().Truncate(24 * time.Hour)
	to := filter.Range.To.UTC().Truncate(24 * time.Hour)
	if to.After(from.AddDate(1, 0, 0)) {
		to = from.AddDate(1, 0, 0)
	}

	var all []model.Match
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, store := range r.stores {
			matches, err := store.ReadDaily(date)
			if err != nil {
				continue // missing day files are expected
			}
			all = append(all, matches...)
		}
	}

	all = model.Dedupe(all)
	filtered := all[:0]
	for _, m := range all {
		if filter.Team != "" && !strings.EqualFold(m.Team, filter.Team) {
			continue
		}
		if filter.Competition != "" && !strings.EqualFold(m.Competition, filter.Competition) {
			continue
		}
		if filter.Source != "" && m.Source != filter.Source {
			continue
		}
		filtered = append(filtered, m)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].Date.Equal(filtered[j].Date) {
			return filtered[i].Date.After(filtered[j].Date)
		}
		return filtered[i].StartTime > filtered[j].StartTime
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(filtered) {
			return nil, nil
		}
		filtered = filtered[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Summaries aggregates team results over the range.
func (r *Reader) Summaries(ctx context.Context, tr storage.TimeRange, limit int) ([]storage.TeamSummary, error) {
	matches, err := r.List(ctx, storage.MatchFilter{Range: tr, Limit: 1 << 20})
	if err != nil {
		return nil, err
	}

	byTeam := make(map[string]*storage.TeamSummary)
	for _, m := range matches {
		s, ok := byTeam[m.Team]
		if !ok {
			s = &storage.TeamSummary{Name: m.Team}
			byTeam[m.Team] = s
		}
		s.Matches++
		s.Goals += int64(m.GoalsFor)
		switch m.Result {
		case "W":
			s.Wins++
		case "D":
			s.Draws++
		case "L":
			s.Losses++
		}
	}

	summaries := make([]storage.TeamSummary, 0, len(byTeam))
	for _, s := range byTeam {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Matches != summaries[j].Matches {
			return summaries[i].Matches > summaries[j].Matches
		}
		return summaries[i].Name < summaries[j].Name
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// CountBySource counts rows per provider over the range.
func (r *Reader) CountBySource(ctx context.Context, tr storage.TimeRange) (map[string]int64, error) {
	matches, err := r.List(ctx, storage.MatchFilter{Range: tr, Limit: 1 << 20})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, m := range matches {
		counts[m.Source]++
	}
	return counts, nil
}
