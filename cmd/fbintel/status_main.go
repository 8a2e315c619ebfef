package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// runStatus performs the same preflight as collect and reports each
// check without aborting on the first failure.
func runStatus(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		fmt.Printf("❌ Preflight failed: %v\n", err)
		return err
	}
	defer e.close()

	fmt.Println("🏥 fbintel status")
	fmt.Println()

	for _, dir := range e.cfg.Data.Dirs() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fmt.Printf("  ✅ directory %s\n", dir)
		} else {
			fmt.Printf("  ❌ directory %s missing\n", dir)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	if e.db.Enabled() {
		if err := e.db.Ping(ctx); err != nil {
			fmt.Printf("  ❌ postgres: %v\n", err)
		} else {
			fmt.Println("  ✅ postgres connected")
		}
	} else {
		fmt.Println("  ⏸️  postgres disabled (CSV-only mode)")
	}

	hits, misses, entries := e.cache.Stats()
	fmt.Printf("  ✅ cache: %d entries, %d hits, %d misses\n", entries, hits, misses)

	fmt.Printf("\n  Providers: sofascore=%v fbref=%v\n",
		e.cfg.Providers.Sofascore.Enabled, e.cfg.Providers.FBref.Enabled)
	return nil
}
