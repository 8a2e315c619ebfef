package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/osegonte/fbintel/internal/storage"
)

// teamsRepo implements storage.TeamRepo on PostgreSQL.
type teamsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewTeamsRepo creates a PostgreSQL team repository.
func NewTeamsRepo(db *sqlx.DB, timeout time.Duration) storage.TeamRepo {
	return &teamsRepo{db: db, timeout: timeout}
}

// Summaries aggregates per-team results over the time range, busiest first.
func (r *teamsRepo) Summaries(ctx context.Context, tr storage.TimeRange, limit int) ([]storage.TeamSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT team,
		       COUNT(*) AS matches,
		       COUNT(*) FILTER (WHERE result = 'W') AS wins,
		       COUNT(*) FILTER (WHERE result = 'D') AS draws,
		       COUNT(*) FILTER (WHERE result = 'L') AS losses,
		       COALESCE(SUM(goals_for), 0) AS goals
		FROM matches
		WHERE match_date >= $1 AND match_date <= $2
		GROUP BY team
		ORDER BY matches DESC, team
		LIMIT $3`

	var summaries []storage.TeamSummary
	if err := r.db.SelectContext(ctx, &summaries, query, tr.From, tr.To, limit); err != nil {
		return nil, fmt.Errorf("failed to query team summaries: %w", err)
	}
	return summaries, nil
}
