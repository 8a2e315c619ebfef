package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osegonte/fbintel/internal/pipeline"
	"github.com/osegonte/fbintel/internal/stats"
)

const maxAttempts = 3

// Runner executes a collection window. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, from time.Time, days int, progress func(pipeline.DayEvent)) (*pipeline.Result, error)
}

// RunnerFactory builds a runner restricted to the given providers.
// An empty slice means all enabled providers.
type RunnerFactory func(providers []string) (Runner, error)

// Job is a scheduled collection job loaded from YAML.
type Job struct {
	Name        string    `yaml:"name"`
	Every       string    `yaml:"every"` // Go duration: "24h", "6h"
	Type        string    `yaml:"type"`  // "collect.daily", "collect.backfill"
	Description string    `yaml:"description"`
	Enabled     bool      `yaml:"enabled"`
	Config      JobConfig `yaml:"config"`

	interval time.Duration
}

// Interval is the parsed Every value.
func (j Job) Interval() time.Duration { return j.interval }

// JobConfig holds job-specific knobs.
type JobConfig struct {
	Days      int      `yaml:"days"`      // window size for backfill jobs
	Stats     bool     `yaml:"stats"`     // compute summary stats after the run
	Providers []string `yaml:"providers"` // restrict to these sources, empty = all
}

// Config is the top-level jobs file.
type Config struct {
	Jobs   []Job        `yaml:"jobs"`
	Global GlobalConfig `yaml:"global"`
}

// GlobalConfig holds scheduler-wide settings.
type GlobalConfig struct {
	ArtifactsDir string `yaml:"artifacts_dir"`
	Timezone     string `yaml:"timezone"`
}

// Status is a point-in-time scheduler snapshot.
type Status struct {
	Running      bool          `json:"running"`
	EnabledJobs  int           `json:"enabled_jobs"`
	DisabledJobs int           `json:"disabled_jobs"`
	LastRun      time.Time     `json:"last_run"`
	LastJob      string        `json:"last_job,omitempty"`
	Uptime       time.Duration `json:"uptime"`
}

// JobResult records one job execution in the ledger.
type JobResult struct {
	JobName   string        `json:"job_name"`
	Type      string        `json:"type"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Matches   int           `json:"matches"`
	Files     []string      `json:"files,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Scheduler runs collection jobs on fixed intervals.
type Scheduler struct {
	config  Config
	factory RunnerFactory

	mu        sync.Mutex
	running   bool
	startTime time.Time
	lastRun   time.Time
	lastJob   string
}

// New loads the jobs file and returns a scheduler.
func New(configPath string, factory RunnerFactory) (*Scheduler, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load jobs config")
	}
	return &Scheduler{config: cfg, factory: factory}, nil
}

func loadConfig(configPath string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, errors.Wrapf(err, "read %s", configPath)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse jobs config")
	}

	if cfg.Global.ArtifactsDir == "" {
		cfg.Global.ArtifactsDir = "artifacts"
	}
	if cfg.Global.Timezone == "" {
		cfg.Global.Timezone = "UTC"
	}
	for i := range cfg.Jobs {
		if cfg.Jobs[i].Every == "" {
			cfg.Jobs[i].interval = 24 * time.Hour
		} else {
			interval, err := time.ParseDuration(cfg.Jobs[i].Every)
			if err != nil {
				return cfg, errors.Wrapf(err, "job %s: invalid interval %q", cfg.Jobs[i].Name, cfg.Jobs[i].Every)
			}
			if interval <= 0 {
				return cfg, errors.Errorf("job %s: interval must be positive", cfg.Jobs[i].Name)
			}
			cfg.Jobs[i].interval = interval
		}
		if cfg.Jobs[i].Config.Days <= 0 {
			cfg.Jobs[i].Config.Days = 1
		}
		if cfg.Jobs[i].Type == "" {
			cfg.Jobs[i].Type = "collect.daily"
		}
	}
	return cfg, nil
}

// Jobs returns all configured jobs.
func (s *Scheduler) Jobs() []Job {
	return s.config.Jobs
}

// Status reports the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled, disabled := 0, 0
	for _, job := range s.config.Jobs {
		if job.Enabled {
			enabled++
		} else {
			disabled++
		}
	}

	st := Status{
		Running:      s.running,
		EnabledJobs:  enabled,
		DisabledJobs: disabled,
		LastRun:      s.lastRun,
		LastJob:      s.lastJob,
	}
	if s.running {
		st.Uptime = time.Since(s.startTime)
	}
	return st
}

// Run starts a ticker per enabled job and blocks until ctx is cancelled.
// Executions are serialized so overlapping windows never run at once.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	enabled := make([]Job, 0, len(s.config.Jobs))
	for _, job := range s.config.Jobs {
		if job.Enabled {
			enabled = append(enabled, job)
		}
	}
	if len(enabled) == 0 {
		return errors.New("no enabled jobs")
	}

	log.Info().Int("jobs", len(enabled)).Msg("scheduler started")

	due := make(chan Job)
	var wg sync.WaitGroup
	for _, job := range enabled {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			t := time.NewTicker(j.interval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					select {
					case due <- j:
					case <-ctx.Done():
						return
					}
				}
			}
		}(job)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case job := <-due:
			result := s.execute(ctx, job)
			if err := s.appendLedger(result); err != nil {
				log.Warn().Err(err).Str("job", job.Name).Msg("ledger append failed")
			}
		}
	}
}

// RunOnce executes a named job immediately, regardless of its schedule.
func (s *Scheduler) RunOnce(ctx context.Context, name string) (*JobResult, error) {
	var job *Job
	for i := range s.config.Jobs {
		if s.config.Jobs[i].Name == name {
			job = &s.config.Jobs[i]
			break
		}
	}
	if job == nil {
		return nil, errors.Errorf("job not found: %s", name)
	}

	result := s.execute(ctx, *job)
	if err := s.appendLedger(result); err != nil {
		log.Warn().Err(err).Str("job", name).Msg("ledger append failed")
	}
	return &result, nil
}

// execute runs a job with retry. Failed attempts back off 2s, 4s.
func (s *Scheduler) execute(ctx context.Context, job Job) JobResult {
	start := time.Now()
	result := JobResult{
		JobName:   job.Name,
		Type:      job.Type,
		StartTime: start,
	}

	days := 1
	from := time.Now().UTC()
	switch job.Type {
	case "collect.daily":
		// today only
	case "collect.backfill":
		days = job.Config.Days
		from = from.AddDate(0, 0, -(days - 1))
	default:
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		result.Error = fmt.Sprintf("unknown job type: %s", job.Type)
		return result
	}

	log.Info().Str("job", job.Name).Str("type", job.Type).Int("days", days).Msg("job starting")

	runner, err := s.factory(job.Config.Providers)
	if err != nil {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		result.Error = err.Error()
		return result
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt
		run, err := runner.Run(ctx, from, days, nil)
		if err == nil {
			result.Success = true
			result.Matches = len(run.Matches)
			result.Files = run.FilesWritten
			if job.Config.Stats {
				report := stats.Compute(run.Matches)
				log.Info().Str("job", job.Name).
					Int("matches", report.TotalMatches).
					Int("goals", report.TotalGoals).
					Msg("job stats")
			}
			break
		}
		lastErr = err
		log.Warn().Err(err).Str("job", job.Name).Int("attempt", attempt).Msg("job attempt failed")

		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		backoff := time.Duration(1<<attempt) * time.Second
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(backoff):
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)
	if !result.Success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	s.lastRun = result.EndTime
	s.lastJob = job.Name
	s.mu.Unlock()

	log.Info().Str("job", job.Name).Bool("success", result.Success).
		Int("matches", result.Matches).Dur("duration", result.Duration).Msg("job finished")
	return result
}

// appendLedger writes the result as one JSON line under the artifacts dir.
func (s *Scheduler) appendLedger(result JobResult) error {
	dir := s.config.Global.ArtifactsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create artifacts dir")
	}

	path := filepath.Join(dir, "jobs.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(result); err != nil {
		return errors.Wrap(err, "encode job result")
	}
	return nil
}

// History reads back the JSONL ledger, oldest first. A missing ledger
// is not an error.
func (s *Scheduler) History() ([]JobResult, error) {
	path := filepath.Join(s.config.Global.ArtifactsDir, "jobs.jsonl")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var results []JobResult
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var r JobResult
		if err := dec.Decode(&r); err != nil {
			return nil, errors.Wrap(err, "decode ledger entry")
		}
		results = append(results, r)
	}
	return results, nil
}
