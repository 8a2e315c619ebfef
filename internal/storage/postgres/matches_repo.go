package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/storage"
)

// matchesRepo implements storage.MatchRepo on PostgreSQL.
type matchesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewMatchesRepo creates a PostgreSQL match repository.
func NewMatchesRepo(db *sqlx.DB, timeout time.Duration) storage.MatchRepo {
	return &matchesRepo{db: db, timeout: timeout}
}

const upsertMatchQuery = `
	INSERT INTO matches (
		id, external_id, match_date, start_time, team, opponent, home_away,
		venue, competition, country, round, status, result,
		goals_for, goals_against, xg, xga, shots, shots_on_target,
		possession, corners, source, scraped_at, attributes
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
	)
	ON CONFLICT (external_id, team) DO UPDATE SET
		status = EXCLUDED.status,
		result = EXCLUDED.result,
		goals_for = EXCLUDED.goals_for,
		goals_against = EXCLUDED.goals_against,
		xg = EXCLUDED.xg,
		xga = EXCLUDED.xga,
		shots = EXCLUDED.shots,
		shots_on_target = EXCLUDED.shots_on_target,
		possession = EXCLUDED.possession,
		corners = EXCLUDED.corners,
		source = EXCLUDED.source,
		scraped_at = EXCLUDED.scraped_at,
		attributes = EXCLUDED.attributes`

// Upsert inserts or refreshes one match row keyed by (external_id, team).
func (r *matchesRepo) Upsert(ctx context.Context, m model.Match) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args, err := matchArgs(m)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, upsertMatchQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("duplicate match %s/%s: %w", m.ExternalID, m.Team, err)
		}
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

// UpsertBatch writes all rows in one transaction.
func (r *matchesRepo) UpsertBatch(ctx context.Context, matches []model.Match) error {
	if len(matches) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(matches)/100+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertMatchQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		args, err := matchArgs(m)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to upsert match %s/%s in batch: %w", m.ExternalID, m.Team, err)
		}
	}
	return tx.Commit()
}

// List retrieves matches for the given filter, most recent first.
func (r *matchesRepo) List(ctx context.Context, filter storage.MatchFilter) ([]model.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, external_id, match_date, start_time, team, opponent, home_away,
		       venue, competition, country, round, status, result,
		       goals_for, goals_against, xg, xga, shots, shots_on_target,
		       possession, corners, source, scraped_at, attributes
		FROM matches
		WHERE match_date >= $1 AND match_date <= $2`
	args := []interface{}{filter.Range.From, filter.Range.To}

	if filter.Team != "" {
		args = append(args, filter.Team)
		query += fmt.Sprintf(" AND team = $%d", len(args))
	}
	if filter.Competition != "" {
		args = append(args, filter.Competition)
		query += fmt.Sprintf(" AND competition = $%d", len(args))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY match_date DESC, start_time DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// Latest returns the most recently scraped rows.
func (r *matchesRepo) Latest(ctx context.Context, limit int) ([]model.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, external_id, match_date, start_time, team, opponent, home_away,
		       venue, competition, country, round, status, result,
		       goals_for, goals_against, xg, xga, shots, shots_on_target,
		       possession, corners, source, scraped_at, attributes
		FROM matches
		ORDER BY scraped_at DESC
		LIMIT $1`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// Count returns the number of rows with match dates inside the range.
func (r *matchesRepo) Count(ctx context.Context, tr storage.TimeRange) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE match_date >= $1 AND match_date <= $2`,
		tr.From, tr.To).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// CountBySource groups row counts by provider.
func (r *matchesRepo) CountBySource(ctx context.Context, tr storage.TimeRange) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryxContext(ctx, `
		SELECT source, COUNT(*)
		FROM matches
		WHERE match_date >= $1 AND match_date <= $2
		GROUP BY source
		ORDER BY source`, tr.From, tr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = count
	}
	return counts, rows.Err()
}

func matchArgs(m model.Match) ([]interface{}, error) {
	attributesJSON, err := json.Marshal(m.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	return []interface{}{
		m.ID, m.ExternalID, m.Date, m.StartTime, m.Team, m.Opponent, m.HomeAway,
		m.Venue, m.Competition, m.Country, m.Round, m.Status, m.Result,
		m.GoalsFor, m.GoalsAgainst, m.XG, m.XGA, m.Shots, m.ShotsOnTarget,
		m.Possession, m.Corners, m.Source, m.ScrapedAt, attributesJSON,
	}, nil
}

func scanMatches(rows *sqlx.Rows) ([]model.Match, error) {
	var matches []model.Match
	for rows.Next() {
		var m model.Match
		var attributesJSON []byte

		err := rows.Scan(
			&m.ID, &m.ExternalID, &m.Date, &m.StartTime, &m.Team, &m.Opponent, &m.HomeAway,
			&m.Venue, &m.Competition, &m.Country, &m.Round, &m.Status, &m.Result,
			&m.GoalsFor, &m.GoalsAgainst, &m.XG, &m.XGA, &m.Shots, &m.ShotsOnTarget,
			&m.Possession, &m.Corners, &m.Source, &m.ScrapedAt, &attributesJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		if len(attributesJSON) > 0 {
			if err := json.Unmarshal(attributesJSON, &m.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return matches, nil
}
