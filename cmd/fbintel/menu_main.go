package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultCollectDays = 7

// MenuUI is the interactive interface. The quick-start flow mirrors
// the non-interactive collect command exactly.
type MenuUI struct {
	cmd   *cobra.Command
	stdin *bufio.Reader
}

func NewMenuUI(cmd *cobra.Command, in io.Reader) *MenuUI {
	return &MenuUI{
		cmd:   cmd,
		stdin: bufio.NewReader(in),
	}
}

// Run starts the interactive menu loop.
func (ui *MenuUI) Run() error {
	log.Info().Msg("Starting fbintel interactive menu")

	ui.showBanner()

	for {
		choice, err := ui.showMainMenu()
		if err != nil {
			return fmt.Errorf("menu error: %w", err)
		}

		err = ui.handleMenuChoice(choice)
		if err == nil {
			ui.waitForEnter()
			continue
		}
		if err.Error() == "exit" {
			break
		}
		// Collection failure ends the session with a non-zero exit.
		return err
	}

	log.Info().Msg("fbintel menu session ended")
	return nil
}

func (ui *MenuUI) showBanner() {
	fmt.Printf(`
 ╔═══════════════════════════════════════════════════════╗
 ║                 ⚽ fbintel %s                       ║
 ║           Football Match Data Collection              ║
 ╚═══════════════════════════════════════════════════════╝

`, version)
}

func (ui *MenuUI) showMainMenu() (string, error) {
	fmt.Printf(`
╔═══════════ MAIN MENU ═══════════╗

 1. ⚽ Collect - Fetch Match Data
 2. 📊 Dashboard - Browse Results
 3. 🏥 Status - System Health
 4. ⏱️  Jobs - Scheduled Collection
 0. 🚪 Exit

╚═════════════════════════════════╝

Enter your choice (0-4): `)

	line, err := ui.stdin.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (ui *MenuUI) handleMenuChoice(choice string) error {
	switch choice {
	case "1":
		return ui.handleCollect()
	case "2":
		return ui.handleDashboard()
	case "3":
		return runStatus(ui.cmd, nil)
	case "4":
		return runScheduleList(ui.cmd, nil)
	case "0":
		return fmt.Errorf("exit")
	default:
		fmt.Printf("❌ Invalid choice: %s\n", choice)
		return nil
	}
}

// handleCollect runs the canonical collection flow: ask for a window,
// collect, then offer to launch the dashboard.
func (ui *MenuUI) handleCollect() error {
	var e *env
	defer func() {
		if e != nil {
			e.close()
		}
	}()

	collect := func(days int) error {
		var err error
		if e, err = setup(ui.cmd); err != nil {
			fmt.Printf("❌ Preflight failed: %v\n", err)
			return err
		}
		ctx, stop := signal.NotifyContext(ui.cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return collectAndReport(ctx, e, time.Now().UTC(), days, nil, true)
	}
	launch := func() error {
		return ui.serveDashboard(e)
	}
	return ui.collectFlow(collect, launch)
}

// collectFlow sequences the quick-start: prompt for a window, collect, then
// offer the dashboard. A collection failure returns before the dashboard
// prompt; a launch problem never fails the session.
func (ui *MenuUI) collectFlow(collect func(days int) error, launch func() error) error {
	days := ui.promptDays()

	if err := collect(days); err != nil {
		return err
	}

	if ui.promptYesNo("Would you like to launch the dashboard now? (y/n)") {
		if err := launch(); err != nil {
			fmt.Printf("⚠️  Dashboard unavailable: %v\n", err)
			log.Warn().Err(err).Msg("dashboard launch failed")
		}
	}
	return nil
}

func (ui *MenuUI) handleDashboard() error {
	e, err := setup(ui.cmd)
	if err != nil {
		fmt.Printf("❌ Preflight failed: %v\n", err)
		return err
	}
	defer e.close()

	if err := ui.serveDashboard(e); err != nil {
		fmt.Printf("⚠️  Dashboard unavailable: %v\n", err)
		log.Warn().Err(err).Msg("dashboard launch failed")
	}
	return nil
}

func (ui *MenuUI) serveDashboard(e *env) error {
	srv, err := buildDashboard(e)
	if err != nil {
		return err
	}

	fmt.Printf("📊 Dashboard listening on http://%s:%d (Ctrl+C to return)\n",
		e.cfg.Dashboard.Host, e.cfg.Dashboard.Port)

	ctx, stop := signal.NotifyContext(ui.cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

// promptDays asks for the collection window. Empty input takes the
// default, anything non-numeric re-prompts.
func (ui *MenuUI) promptDays() int {
	for {
		fmt.Printf("How many days of data would you like to collect? [%d]: ", defaultCollectDays)

		line, err := ui.stdin.ReadString('\n')
		if err != nil {
			return defaultCollectDays
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultCollectDays
		}

		days, err := strconv.Atoi(line)
		if err != nil || days < 1 {
			fmt.Printf("❌ Please enter a positive number of days.\n")
			continue
		}
		return days
	}
}

func (ui *MenuUI) promptYesNo(question string) bool {
	fmt.Printf("%s: ", question)

	line, err := ui.stdin.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func (ui *MenuUI) waitForEnter() {
	fmt.Print("\nPress Enter to continue...")
	ui.stdin.ReadString('\n')
}
