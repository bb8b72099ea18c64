package main

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/mark3labs/wizflow/internal/config"
	"github.com/mark3labs/wizflow/internal/journal"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/mark3labs/wizflow/internal/nats"
	"github.com/spf13/cobra"
)

// loadConfig loads the layered config, applies --data-dir when given and
// configures logging.
func loadConfig(cmd *cobra.Command, dataDir string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// openJournal starts the embedded NATS server under dataDir.
func openJournal(ctx context.Context, dataDir string) (*nats.Bus, *journal.Store, error) {
	bus, err := nats.Open(ctx, dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return bus, journal.NewStore(bus.JS, bus.Stream), nil
}

// checkSession rejects names that would not map to a single journal subject.
func checkSession(session string) error {
	if !slug.IsSlug(session) {
		return fmt.Errorf("invalid session name %q: use lowercase letters, digits and hyphens", session)
	}
	return nil
}
