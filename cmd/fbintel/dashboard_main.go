package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/osegonte/fbintel/internal/dashboard"
	"github.com/osegonte/fbintel/internal/pipeline"
	"github.com/osegonte/fbintel/internal/storage/csvstore"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		fmt.Printf("❌ Preflight failed: %v\n", err)
		return err
	}
	defer e.close()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		e.cfg.Dashboard.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		e.cfg.Dashboard.Host = host
	}

	srv, err := buildDashboard(e)
	if err != nil {
		fmt.Printf("❌ Dashboard setup failed: %v\n", err)
		return err
	}

	fmt.Printf("📊 Dashboard listening on http://%s:%d\n", e.cfg.Dashboard.Host, e.cfg.Dashboard.Port)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("dashboard stopped")
		return err
	}
	return nil
}

// buildDashboard wires the CSV archives and the live collector into a
// dashboard server.
func buildDashboard(e *env) (*dashboard.Server, error) {
	var stores []*csvstore.Store
	for _, dir := range []string{e.cfg.Data.FBrefDir, e.cfg.Data.SofascoreDir} {
		store, err := csvstore.New(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "open store %s", dir)
		}
		stores = append(stores, store)
	}
	reader := csvstore.NewReader(stores...)

	p, err := pipeline.Build(e.cfg, e.cache, e.matchRepo(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build collector")
	}

	return dashboard.NewServer(e.cfg.Dashboard, reader, p)
}
