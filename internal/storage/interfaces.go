// Package storage defines the persistence contracts for collected match data.
// CSV files are the always-on store; Postgres is optional and sits behind the
// same interfaces.
package storage

import (
	"context"
	"time"

	"github.com/osegonte/fbintel/internal/model"
)

// TimeRange is a [From, To] window over match dates.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// MatchFilter narrows list queries for the dashboard API.
type MatchFilter struct {
	Range       TimeRange
	Team        string
	Competition string
	Source      string
	Limit       int
	Offset      int
}

// MatchRepo stores standardized match rows.
type MatchRepo interface {
	Upsert(ctx context.Context, m model.Match) error
	UpsertBatch(ctx context.Context, matches []model.Match) error
	List(ctx context.Context, filter MatchFilter) ([]model.Match, error)
	Latest(ctx context.Context, limit int) ([]model.Match, error)
	Count(ctx context.Context, tr TimeRange) (int64, error)
	CountBySource(ctx context.Context, tr TimeRange) (map[string]int64, error)
}

// TeamSummary aggregates one team's appearances for the dashboard.
type TeamSummary struct {
	Name    string `json:"name" db:"team"`
	Matches int64  `json:"matches" db:"matches"`
	Wins    int64  `json:"wins" db:"wins"`
	Draws   int64  `json:"draws" db:"draws"`
	Losses  int64  `json:"losses" db:"losses"`
	Goals   int64  `json:"goals" db:"goals"`
}

// TeamRepo exposes team-level aggregates.
type TeamRepo interface {
	Summaries(ctx context.Context, tr TimeRange, limit int) ([]TeamSummary, error)
}

// Repository bundles the repos one backend provides.
type Repository struct {
	Matches MatchRepo
	Teams   TeamRepo
}
