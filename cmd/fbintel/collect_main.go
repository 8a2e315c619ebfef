package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/osegonte/fbintel/internal/cache"
	"github.com/osegonte/fbintel/internal/config"
	"github.com/osegonte/fbintel/internal/pipeline"
	"github.com/osegonte/fbintel/internal/stats"
	"github.com/osegonte/fbintel/internal/storage"
	"github.com/osegonte/fbintel/internal/storage/postgres"
)

// env holds the wired runtime pieces shared by collect, dashboard,
// schedule, and the menu.
type env struct {
	cfg   *config.Config
	cache *cache.Layered
	db    *postgres.Manager
}

func (e *env) matchRepo() storage.MatchRepo {
	if e.db != nil && e.db.Enabled() {
		return e.db.Repos().Matches
	}
	return nil
}

func (e *env) close() {
	if e.cache != nil {
		e.cache.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
}

// setup runs the preflight: load config, create the data directories,
// and connect optional backends. Any failure here aborts the command.
func setup(cmd *cobra.Command) (*env, error) {
	setLogLevel(cmd)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	for _, dir := range cfg.Data.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
	}
	log.Info().Strs("dirs", cfg.Data.Dirs()).Msg("data directories ready")

	e := &env{cfg: cfg}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	var redisClient *redis.Client
	if cfg.Cache.Redis.Enabled {
		redisClient = cache.ConnectRedis(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
	}
	e.cache = cache.NewLayered(redisClient, cfg.Cache.DefaultTTL())

	db, err := postgres.NewManager(cfg.Database)
	if err != nil {
		e.close()
		return nil, errors.Wrap(err, "connect database")
	}
	e.db = db

	return e, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	fromStr, _ := cmd.Flags().GetString("from")
	showStats, _ := cmd.Flags().GetBool("stats")
	providersStr, _ := cmd.Flags().GetString("providers")

	from := time.Now().UTC()
	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return errors.Wrapf(err, "invalid --from date %q", fromStr)
		}
		from = parsed
	}

	var only []string
	if providersStr != "" {
		only = strings.Split(providersStr, ",")
	}

	e, err := setup(cmd)
	if err != nil {
		fmt.Printf("❌ Preflight failed: %v\n", err)
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return collectAndReport(ctx, e, from, days, only, showStats)
}

// collectAndReport runs the pipeline and prints the outcome. Shared
// with the menu so both paths behave identically.
func collectAndReport(ctx context.Context, e *env, from time.Time, days int, only []string, showStats bool) error {
	p, err := pipeline.Build(e.cfg, e.cache, e.matchRepo(), only)
	if err != nil {
		fmt.Printf("❌ Collection setup failed: %v\n", err)
		return err
	}

	fmt.Printf("⚽ Collecting %d day(s) of match data from %s...\n", days, from.Format("2006-01-02"))

	result, err := p.Run(ctx, from, days, func(ev pipeline.DayEvent) {
		if ev.Failed {
			fmt.Printf("  ❌ %s: %v\n", ev.Date, ev.Error)
			return
		}
		fmt.Printf("  ✅ %s: %d matches\n", ev.Date, ev.Matches)
	})
	if err != nil {
		fmt.Printf("❌ Collection failed: %v\n", err)
		return err
	}

	fmt.Printf("\n✅ Collection complete: %d matches across %d day(s) in %s\n",
		len(result.Matches), result.DaysProcessed, result.Duration.Round(time.Millisecond))
	for source, n := range result.MatchesBySource {
		fmt.Printf("   %s: %d\n", source, n)
	}
	if result.DaysFailed > 0 {
		fmt.Printf("   ⚠️  %d day(s) failed\n", result.DaysFailed)
	}
	for _, f := range result.FilesWritten {
		log.Debug().Str("file", f).Msg("wrote")
	}

	if showStats {
		fmt.Println()
		stats.Compute(result.Matches).Render(os.Stdout)
	}
	return nil
}
