package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jobcrawl-engine/internal/config"
	"jobcrawl-engine/internal/logger"
	"jobcrawl-engine/internal/store"
)

// defaultCfgPath is copied into the data dir on first run.
var defaultCfgPath = filepath.Join("config", "config.yml")

type rootFlags struct {
	dataDir string
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:           "engine",
		Short:         "Job board crawler with a deduplicating local store",
		Long:          "engine collects job listings from Brazilian job boards, keeps one row per fingerprint in SQLite and serves the result over a local HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.dataDir, "data-dir", "", "Directory holding config.yml and the database (default $JOBCRAWL_DATA_DIR or .)")

	root.AddCommand(
		newCrawlCmd(&rf),
		newQueryCmd(&rf),
		newLatestCmd(&rf),
		newStatsCmd(&rf),
		newExportCmd(&rf),
		newClearCmd(&rf),
		newServeCmd(&rf),
	)
	return root
}

// app is what every command needs after bootstrap.
type app struct {
	cfgPath string
	cfg     config.Config
	log     logger.Logger
}

func loadApp(rf *rootFlags) (*app, error) {
	home := strings.TrimSpace(rf.dataDir)
	if home == "" {
		home = strings.TrimSpace(os.Getenv("JOBCRAWL_DATA_DIR"))
	}
	if home == "" {
		home = "."
	}

	cfgPath, err := config.EnsureUserConfig(home, defaultCfgPath)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	if rf.dataDir != "" {
		cfg.App.DataDir = rf.dataDir
	}

	lg, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return &app{cfgPath: cfgPath, cfg: cfg, log: lg}, nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	path := a.cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return store.Open(ctx, path)
}

func (a *app) close() {
	_ = a.log.Sync()
}
