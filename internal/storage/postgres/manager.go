// Package postgres provides the optional PostgreSQL backend for match storage.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/storage"
)

// Manager owns the connection pool and the repository instances.
type Manager struct {
	db     *sqlx.DB
	config config.DatabaseConfig
	repos  *storage.Repository
}

// NewManager opens a pooled connection and verifies it. When the backend is
// disabled the manager is inert: Enabled() is false and Repos() returns nil.
func NewManager(cfg config.DatabaseConfig) (*Manager, error) {
	if !cfg.Enabled {
		return &Manager{config: cfg}, nil
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required when enabled")
	}

	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m := &Manager{
		db:     db,
		config: cfg,
		repos: &storage.Repository{
			Matches: NewMatchesRepo(db, cfg.QueryTimeout),
			Teams:   NewTeamsRepo(db, cfg.QueryTimeout),
		},
	}

	if err := m.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Int("max_open_conns", cfg.MaxOpenConns).Msg("PostgreSQL storage ready")
	return m, nil
}

// Enabled reports whether a live backend is behind this manager.
func (m *Manager) Enabled() bool { return m.db != nil }

// Repos returns the repository bundle, nil when disabled.
func (m *Manager) Repos() *storage.Repository { return m.repos }

// Ping verifies connectivity for preflight checks.
func (m *Manager) Ping(ctx context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database disabled")
	}
	return m.db.PingContext(ctx)
}

// Close releases the pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id              UUID PRIMARY KEY,
	external_id     TEXT NOT NULL,
	match_date      DATE NOT NULL,
	start_time      TEXT NOT NULL DEFAULT '',
	team            TEXT NOT NULL,
	opponent        TEXT NOT NULL,
	home_away       TEXT NOT NULL,
	venue           TEXT NOT NULL DEFAULT '',
	competition     TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	round           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT '',
	result          TEXT NOT NULL DEFAULT '',
	goals_for       INT NOT NULL DEFAULT 0,
	goals_against   INT NOT NULL DEFAULT 0,
	xg              DOUBLE PRECISION NOT NULL DEFAULT 0,
	xga             DOUBLE PRECISION NOT NULL DEFAULT 0,
	shots           INT NOT NULL DEFAULT 0,
	shots_on_target INT NOT NULL DEFAULT 0,
	possession      DOUBLE PRECISION NOT NULL DEFAULT 0,
	corners         INT NOT NULL DEFAULT 0,
	source          TEXT NOT NULL,
	scraped_at      TIMESTAMPTZ NOT NULL,
	attributes      JSONB,
	UNIQUE (external_id, team)
);
CREATE INDEX IF NOT EXISTS idx_matches_date ON matches (match_date);
CREATE INDEX IF NOT EXISTS idx_matches_team ON matches (team);
CREATE INDEX IF NOT EXISTS idx_matches_competition ON matches (competition);
`

func (m *Manager) ensureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
