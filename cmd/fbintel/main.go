package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "fbintel"
	version = "v1.4.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "fbintel",
		Short:   "Football match data collection platform",
		Version: version,
		Long: `fbintel collects football match data from public providers,
standardizes it into team-oriented rows, and serves it through CSV
archives, Postgres, and a local dashboard.

Run 'fbintel' in a terminal for the interactive menu.
Subcommands and flags cover non-interactive automation.`,
		Run: runDefaultEntry,
	}

	rootCmd.PersistentFlags().String("config", "config/config.yaml", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect match data for a window of days",
		Long:  "Fetch fixtures and match statistics from all enabled providers, dedupe, and write daily CSV files plus raw JSON dumps",
		RunE:  runCollect,
	}

	collectCmd.Flags().Int("days", 7, "Number of days to collect, starting today")
	collectCmd.Flags().String("from", "", "Start date (YYYY-MM-DD), defaults to today")
	collectCmd.Flags().Bool("stats", false, "Print summary statistics after collection")
	collectCmd.Flags().String("providers", "", "Comma-separated provider filter (sofascore,fbref)")

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the local match data dashboard",
		Long:  "Starts the HTTP dashboard with /health, /metrics, JSON APIs, and a live collection websocket",
		RunE:  runDashboard,
	}

	dashboardCmd.Flags().Int("port", 0, "HTTP port (overrides config)")
	dashboardCmd.Flags().String("host", "", "HTTP host (overrides config)")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage scheduled collection jobs",
		Long:  "List, run, and monitor the collection jobs configured in the jobs file",
	}

	scheduleListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all configured jobs",
		RunE:  runScheduleList,
	}

	scheduleStartCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		Long:  "Runs enabled jobs on their configured intervals until interrupted",
		RunE:  runScheduleStart,
	}

	scheduleRunCmd := &cobra.Command{
		Use:   "run [job-name]",
		Short: "Execute a specific job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runScheduleRun,
	}

	scheduleStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show job configuration and recent run history",
		RunE:  runScheduleStatus,
	}

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleStatusCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, database, and cache connectivity",
		RunE:  runStatus,
	}

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu interface",
		Run:   runMenu,
	}

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// runDefaultEntry routes to the menu on a TTY, guidance otherwise.
func runDefaultEntry(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "❌ Interactive menu requires a TTY terminal.\n")
		fmt.Fprintf(os.Stderr, "   Use subcommands for non-interactive automation:\n\n")
		fmt.Fprintf(os.Stderr, "   fbintel collect --days 7 --stats\n")
		fmt.Fprintf(os.Stderr, "   fbintel dashboard --port 8080\n")
		fmt.Fprintf(os.Stderr, "   fbintel --help\n")
		os.Exit(2)
	}

	runMenu(cmd, args)
}

// runMenu starts the interactive menu interface.
func runMenu(cmd *cobra.Command, args []string) {
	ui := NewMenuUI(cmd, os.Stdin)
	if err := ui.Run(); err != nil {
		log.Error().Err(err).Msg("menu interface failed")
		os.Exit(1)
	}
}

func setLogLevel(cmd *cobra.Command) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
