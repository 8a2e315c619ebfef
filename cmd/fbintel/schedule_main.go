package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/osegonte/fbintel/internal/pipeline"
	"github.com/osegonte/fbintel/internal/scheduler"
)

func buildScheduler(e *env) (*scheduler.Scheduler, error) {
	factory := func(providers []string) (scheduler.Runner, error) {
		return pipeline.Build(e.cfg, e.cache, e.matchRepo(), providers)
	}
	return scheduler.New(e.cfg.Scheduler.JobsFile, factory)
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	sched, err := buildScheduler(e)
	if err != nil {
		return err
	}

	jobs := sched.Jobs()
	if len(jobs) == 0 {
		fmt.Println("No jobs configured.")
		return nil
	}

	fmt.Printf("📋 Configured Jobs (%d):\n\n", len(jobs))
	for _, job := range jobs {
		status := "✅ enabled"
		if !job.Enabled {
			status = "⏸️  disabled"
		}
		fmt.Printf("  %s [%s] every %s — %s\n", job.Name, job.Type, job.Interval(), status)
		if job.Description != "" {
			fmt.Printf("     %s\n", job.Description)
		}
	}
	return nil
}

func runScheduleStart(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	sched, err := buildScheduler(e)
	if err != nil {
		return err
	}

	fmt.Println("⏱️  Scheduler starting, Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	sched, err := buildScheduler(e)
	if err != nil {
		return err
	}

	result, err := sched.RunOnce(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if result.Success {
		fmt.Printf("✅ %s: %d matches in %s (%d attempt(s))\n",
			result.JobName, result.Matches, result.Duration.Round(time.Millisecond), result.Attempts)
		return nil
	}
	return errors.Errorf("job %s failed after %d attempt(s): %s", result.JobName, result.Attempts, result.Error)
}

func runScheduleStatus(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	sched, err := buildScheduler(e)
	if err != nil {
		return err
	}

	st := sched.Status()
	fmt.Printf("Scheduler: enabled=%d disabled=%d\n", st.EnabledJobs, st.DisabledJobs)

	history, err := sched.History()
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	// Last ten entries, newest first.
	start := len(history) - 10
	if start < 0 {
		start = 0
	}
	fmt.Printf("\nRecent runs:\n")
	for i := len(history) - 1; i >= start; i-- {
		r := history[i]
		mark := "✅"
		if !r.Success {
			mark = "❌"
		}
		fmt.Printf("  %s %s %s matches=%d duration=%s\n",
			mark, r.StartTime.Format(time.RFC3339), r.JobName, r.Matches, r.Duration.Round(time.Millisecond))
	}
	return nil
}
