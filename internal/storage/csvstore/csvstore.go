// Package csvstore writes collected matches to the daily/raw directory layout
// the dashboard and downstream tooling expect.
package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osegonte/fbintel/internal/model"
)

// Store writes CSV and raw artifacts under one base directory.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir, ensuring the daily and raw
// subdirectories exist.
func New(baseDir string) (*Store, error) {
	for _, dir := range []string{filepath.Join(baseDir, "daily"), filepath.Join(baseDir, "raw")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the store root.
func (s *Store) BaseDir() string { return s.baseDir }

// WriteDaily writes one day's matches to daily/matches_YYYY-MM-DD.csv.
func (s *Store) WriteDaily(date time.Time, matches []model.Match) (string, error) {
	if len(matches) == 0 {
		log.Debug().Str("date", date.Format("2006-01-02")).Msg("no matches to write, skipping daily file")
		return "", nil
	}
	name := fmt.Sprintf("matches_%s.csv", date.Format("2006-01-02"))
	path := filepath.Join(s.baseDir, "daily", name)
	if err := s.writeCSV(path, matches); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRange writes a combined file covering [from, to] to the store root,
// named all_matches_YYYYMMDD_to_YYYYMMDD.csv like the daily exports.
func (s *Store) WriteRange(from, to time.Time, matches []model.Match) (string, error) {
	if len(matches) == 0 {
		return "", nil
	}
	name := fmt.Sprintf("all_matches_%s_to_%s.csv", from.Format("20060102"), to.Format("20060102"))
	path := filepath.Join(s.baseDir, name)

	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Team < sorted[j].Team
	})

	if err := s.writeCSV(path, sorted); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRaw dumps a provider's raw payload to raw/<source>_YYYY-MM-DD.json.
func (s *Store) WriteRaw(source string, date time.Time, payload []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.json", source, date.Format("2006-01-02"))
	path := filepath.Join(s.baseDir, "raw", name)
	if err := atomicWrite(path, payload); err != nil {
		return "", fmt.Errorf("failed to write raw payload: %w", err)
	}
	return path, nil
}

// ReadDaily loads one day's CSV back into match rows. Only the fields the
// dashboard needs are populated.
func (s *Store) ReadDaily(date time.Time) ([]model.Match, error) {
	path := filepath.Join(s.baseDir, "daily", fmt.Sprintf("matches_%s.csv", date.Format("2006-01-02")))
	return ReadFile(path)
}

func (s *Store) writeCSV(path string, matches []model.Match) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".csv-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(model.CSVHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range matches {
		if err := w.Write(m.CSVRecord()); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move csv into place: %w", err)
	}
	log.Info().Int("matches", len(matches)).Str("path", path).Msg("saved matches")
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".raw-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile parses a CSV export back into match rows.
func ReadFile(path string) ([]model.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}

	get := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	matches := make([]model.Match, 0, len(records)-1)
	for _, rec := range records[1:] {
		date, err := time.Parse("2006-01-02", get(rec, "date"))
		if err != nil {
			continue
		}
		m := model.Match{
			ID:          get(rec, "match_id"),
			ExternalID:  get(rec, "external_id"),
			Date:        date,
			StartTime:   get(rec, "start_time"),
			Team:        get(rec, "team"),
			Opponent:    get(rec, "opponent"),
			HomeAway:    get(rec, "home_away"),
			Venue:       get(rec, "venue"),
			Competition: get(rec, "competition"),
			Country:     get(rec, "country"),
			Round:       get(rec, "round"),
			Status:      get(rec, "status"),
			Result:      get(rec, "result"),
			Source:      get(rec, "source"),
		}
		fmt.Sscanf(get(rec, "gf"), "%d", &m.GoalsFor)
		fmt.Sscanf(get(rec, "ga"), "%d", &m.GoalsAgainst)
		fmt.Sscanf(get(rec, "xg"), "%f", &m.XG)
		fmt.Sscanf(get(rec, "xga"), "%f", &m.XGA)
		fmt.Sscanf(get(rec, "sh"), "%d", &m.Shots)
		fmt.Sscanf(get(rec, "sot"), "%d", &m.ShotsOnTarget)
		fmt.Sscanf(get(rec, "possession"), "%f", &m.Possession)
		fmt.Sscanf(get(rec, "corners"), "%d", &m.Corners)
		matches = append(matches, m)
	}
	return matches, nil
}
