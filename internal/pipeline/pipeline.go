// Package pipeline runs the collection flow: fan out over the date range,
// fetch from every provider, standardize, dedupe, persist.
package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osegonte/fbintel/internal/cache"
	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/metrics"
	"github.com/osegonte/fbintel/internal/model"
	"github.com/osegonte/fbintel/internal/provider"
	"github.com/osegonte/fbintel/internal/provider/fbref"
	"github.com/osegonte/fbintel/internal/provider/sofascore"
	"github.com/osegonte/fbintel/internal/storage"
	"github.com/osegonte/fbintel/internal/storage/csvstore"
)

// dayConcurrency bounds how many dates are fetched in parallel. Providers are
// rate limited per host anyway; this only caps goroutine fan-out.
const dayConcurrency = 4

// DayEvent reports one completed day to progress listeners.
type DayEvent struct {
	Date    string `json:"date"`
	Matches int    `json:"matches"`
	Failed  bool   `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// Result summarizes a collection run.
type Result struct {
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
	DaysProcessed   int              `json:"days_processed"`
	DaysFailed      int              `json:"days_failed"`
	Matches         []model.Match    `json:"-"`
	MatchesBySource map[string]int   `json:"matches_by_source"`
	FilesWritten    []string         `json:"files_written"`
	Duration        time.Duration    `json:"duration"`
}

// Pipeline wires providers to stores.
type Pipeline struct {
	providers []provider.Client
	stores    map[string]*csvstore.Store
	repo      storage.MatchRepo
}

// New builds a pipeline from explicit parts. Used directly by tests; CLI code
// goes through Build.
func New(providers []provider.Client, stores map[string]*csvstore.Store, repo storage.MatchRepo) *Pipeline {
	return &Pipeline{providers: providers, stores: stores, repo: repo}
}

// Build assembles the full production pipeline from configuration: enabled
// providers on the shared cache, one CSV store per source, optional Postgres.
func Build(cfg *config.Config, c *cache.Layered, repo storage.MatchRepo, only []string) (*Pipeline, error) {
	wanted := func(name string) bool {
		if len(only) == 0 {
			return true
		}
		for _, n := range only {
			if n == name {
				return true
			}
		}
		return false
	}

	var providers []provider.Client
	stores := make(map[string]*csvstore.Store)

	if cfg.Providers.Sofascore.Enabled && wanted("sofascore") {
		fetcher := provider.NewFetcher("sofascore", "https://www.sofascore.com", cfg.Providers.Sofascore, c)
		providers = append(providers, sofascore.New(fetcher, cfg.Providers.Sofascore.BaseURL))
		store, err := csvstore.New(cfg.Data.SofascoreDir)
		if err != nil {
			return nil, errors.Wrap(err, "sofascore store")
		}
		stores["sofascore"] = store
	}

	if cfg.Providers.FBref.Enabled && wanted("fbref") {
		fetcher := provider.NewFetcher("fbref", "", cfg.Providers.FBref, c)
		providers = append(providers, fbref.New(fetcher, cfg.Providers.FBref.BaseURL))
		store, err := csvstore.New(cfg.Data.FBrefDir)
		if err != nil {
			return nil, errors.Wrap(err, "fbref store")
		}
		stores["fbref"] = store
	}

	if len(providers) == 0 {
		return nil, errors.New("no providers enabled")
	}
	return New(providers, stores, repo), nil
}

// Run collects matches for [from, from+days). A day counts as failed when
// every provider fails for it; the run fails when every day failed.
func (p *Pipeline) Run(ctx context.Context, from time.Time, days int, progress func(DayEvent)) (*Result, error) {
	if days <= 0 {
		return nil, errors.New("days must be positive")
	}

	start := time.Now()
	metrics.ActiveCollections.Inc()
	defer metrics.ActiveCollections.Dec()
	defer func() {
		metrics.CollectDuration.Observe(time.Since(start).Seconds())
	}()

	from = from.UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, days-1)

	log.Info().
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Int("providers", len(p.providers)).
		Msg("Starting collection")

	result := &Result{
		From:            from,
		To:              to,
		MatchesBySource: make(map[string]int),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dayConcurrency)

	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		g.Go(func() error {
			dayMatches, files, err := p.collectDay(gctx, date)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.DaysFailed++
				log.Warn().Err(err).Str("date", date.Format("2006-01-02")).Msg("day failed")
			} else {
				result.DaysProcessed++
				result.Matches = append(result.Matches, dayMatches...)
				result.FilesWritten = append(result.FilesWritten, files...)
			}
			if progress != nil {
				ev := DayEvent{Date: date.Format("2006-01-02"), Matches: len(dayMatches), Failed: err != nil}
				if err != nil {
					ev.Error = err.Error()
				}
				progress(ev)
			}
			// Day failures are tolerated; only ctx cancellation aborts the group.
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "collection aborted")
	}
	if result.DaysProcessed == 0 {
		return nil, errors.Errorf("all %d days failed", days)
	}

	result.Matches = model.Dedupe(result.Matches)
	for _, m := range result.Matches {
		result.MatchesBySource[m.Source]++
		metrics.MatchesScraped.WithLabelValues(m.Source).Inc()
	}

	if err := p.persistCombined(ctx, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	log.Info().
		Int("matches", len(result.Matches)).
		Int("days_ok", result.DaysProcessed).
		Int("days_failed", result.DaysFailed).
		Dur("duration", result.Duration).
		Msg("Collection completed")

	return result, nil
}

// collectDay fetches one date from every provider and writes the per-source
// daily artifacts. It fails only when no provider delivered.
func (p *Pipeline) collectDay(ctx context.Context, date time.Time) ([]model.Match, []string, error) {
	var dayMatches []model.Match
	var files []string
	var lastErr error
	succeeded := 0

	for _, prov := range p.providers {
		matches, err := prov.FetchDay(ctx, date)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).
				Str("provider", prov.Name()).
				Str("date", date.Format("2006-01-02")).
				Msg("provider fetch failed")
			continue
		}
		succeeded++
		dayMatches = append(dayMatches, matches...)

		store, ok := p.stores[prov.Name()]
		if !ok {
			continue
		}
		if path, err := store.WriteDaily(date, matches); err != nil {
			log.Warn().Err(err).Str("provider", prov.Name()).Msg("daily csv write failed")
		} else if path != "" {
			files = append(files, path)
		}
		if raw, err := json.Marshal(matches); err == nil {
			if path, err := store.WriteRaw(prov.Name(), date, raw); err == nil {
				files = append(files, path)
			}
		}
	}

	if succeeded == 0 {
		return nil, nil, errors.Wrapf(lastErr, "all providers failed for %s", date.Format("2006-01-02"))
	}
	return dayMatches, files, nil
}

// persistCombined writes the deduped range export plus the Postgres batch.
func (p *Pipeline) persistCombined(ctx context.Context, result *Result) error {
	store, ok := p.stores["fbref"]
	if !ok {
		// Fall back to whichever store exists so the range export always lands.
		for _, s := range p.stores {
			store, ok = s, true
			break
		}
	}
	if ok {
		path, err := store.WriteRange(result.From, result.To, result.Matches)
		if err != nil {
			return errors.Wrap(err, "combined csv")
		}
		if path != "" {
			result.FilesWritten = append(result.FilesWritten, path)
		}
	}

	if p.repo != nil {
		if err := p.repo.UpsertBatch(ctx, result.Matches); err != nil {
			return errors.Wrap(err, "database upsert")
		}
		log.Info().Int("rows", len(result.Matches)).Msg("matches upserted to database")
	}
	return nil
}
